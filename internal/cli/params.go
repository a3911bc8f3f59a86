package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/zoobzio/dynq/declarative"
)

// parseParams turns repeated --param name=value flags into values. Integers,
// floats and booleans are recognized; everything else stays a string.
func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid param %q: want name=value", p)
		}
		params[name] = paramValue(raw)
	}
	return params, nil
}

func paramValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// readDocument loads a query document from a file, or stdin for "-".
func readDocument(path string) (*declarative.Document, error) {
	if path == "-" {
		return declarative.Decode(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return declarative.Parse(data)
}
