// Command dynq renders and runs declarative query documents.
package main

import (
	"fmt"
	"os"

	"github.com/zoobzio/dynq/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
