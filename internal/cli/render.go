package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zoobzio/dynq"
	"github.com/zoobzio/dynq/declarative"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	Dialect string
	Params  []string
}

// Rendered is one dialect's output of the render command.
type Rendered struct {
	Dialect string          `json:"dialect"`
	SQL     string          `json:"sql"`
	Params  []RenderedParam `json:"params"`
}

// RenderedParam is a bound parameter in render output.
type RenderedParam struct {
	Name        string `json:"name"`
	Placeholder string `json:"placeholder"`
	Kind        string `json:"kind"`
	Size        int    `json:"size,omitempty"`
	Value       any    `json:"value"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render <document>",
		Short: "Compile a query document to SQL",
		Long: `Compile a declarative query document (YAML or JSON, "-" for stdin) to SQL
and print the statement with its bound parameters.

Use --dialect all to render every supported dialect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Dialect, "dialect", "d", "", "target dialect, or \"all\" (default from config, else postgres)")
	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "parameter value as name=value (repeatable)")

	return cmd
}

func runRender(cmd *cobra.Command, rootOpts *RootOptions, opts *RenderOptions, path string) error {
	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	params, err := parseParams(opts.Params)
	if err != nil {
		return err
	}

	names := []string{resolveDialect(opts.Dialect, rootOpts.Config)}
	if names[0] == "all" {
		names = DialectNames()
	}
	out, err := renderAll(cmd.Context(), doc, params, names)
	if err != nil {
		return err
	}

	if rootOpts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if len(out) == 1 {
			return enc.Encode(out[0])
		}
		return enc.Encode(out)
	}
	for i, r := range out {
		if len(out) > 1 {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "-- %s\n", r.Dialect)
		}
		writeRendered(cmd.OutOrStdout(), r)
	}
	return nil
}

// renderAll builds the document once and renders it with each dialect
// concurrently. Results keep the order of names.
func renderAll(ctx context.Context, doc *declarative.Document, params map[string]any, names []string) ([]Rendered, error) {
	q, err := declarative.Build(doc, params)
	if err != nil {
		return nil, err
	}

	out := make([]Rendered, len(names))
	g, _ := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			r, err := Dialect(name)
			if err != nil {
				return err
			}
			res, err := q.Render(r)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			out[i] = newRendered(name, res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func newRendered(dialect string, res *dynq.QueryResult) Rendered {
	r := Rendered{Dialect: dialect, SQL: res.SQL, Params: make([]RenderedParam, 0, len(res.Params))}
	for _, p := range res.Params {
		r.Params = append(r.Params, RenderedParam{
			Name:        p.Name,
			Placeholder: p.Placeholder,
			Kind:        p.Kind.String(),
			Size:        p.Size,
			Value:       p.Value,
		})
	}
	return r
}

func writeRendered(w io.Writer, r Rendered) {
	fmt.Fprintln(w, r.SQL)
	for _, p := range r.Params {
		fmt.Fprintf(w, "  %s = %v\n", p.Placeholder, p.Value)
	}
}

func resolveDialect(flag string, cfg Config) string {
	switch {
	case flag != "":
		return flag
	case cfg.Dialect != "":
		return cfg.Dialect
	default:
		return "postgres"
	}
}
