package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zoobzio/dynq"
	"github.com/zoobzio/dynq/mssql"
	"github.com/zoobzio/dynq/mysql"
	"github.com/zoobzio/dynq/oracle"
	"github.com/zoobzio/dynq/postgres"
	"github.com/zoobzio/dynq/sqlite"
)

type dialectInfo struct {
	renderer func() dynq.Renderer
	// driver is the database/sql driver registered for the dialect, empty
	// when the tool links none.
	driver string
}

var dialects = map[string]dialectInfo{
	"oracle":   {func() dynq.Renderer { return oracle.New() }, ""},
	"mssql":    {func() dynq.Renderer { return mssql.New() }, "sqlserver"},
	"postgres": {func() dynq.Renderer { return postgres.New() }, "pgx"},
	"mysql":    {func() dynq.Renderer { return mysql.New() }, "mysql"},
	"sqlite":   {func() dynq.Renderer { return sqlite.New() }, "sqlite"},
}

// DialectNames lists the supported dialects in sorted order.
func DialectNames() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Dialect returns a renderer by name.
func Dialect(name string) (dynq.Renderer, error) {
	d, ok := dialects[name]
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q: must be one of %v", name, DialectNames())
	}
	return d.renderer(), nil
}

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List dialects and the SQL features they support",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			type entry struct {
				Name         string            `json:"name"`
				Driver       string            `json:"driver,omitempty"`
				Capabilities dynq.Capabilities `json:"capabilities"`
			}
			entries := make([]entry, 0, len(dialects))
			for _, name := range DialectNames() {
				d := dialects[name]
				entries = append(entries, entry{Name: name, Driver: d.driver, Capabilities: d.renderer().Capabilities()})
			}

			if rootOpts.Format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DIALECT\tDRIVER\tNAMED\tWINDOW PAGING\tFULL JOIN\tROLLUP\tFULL TEXT")
			for _, e := range entries {
				c := e.Capabilities
				driver := e.Driver
				if driver == "" {
					driver = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", e.Name, driver,
					yesNo(c.NamedParameters), yesNo(c.WindowPaging), yesNo(c.FullJoin), yesNo(c.Rollup), yesNo(c.FullTextSearch))
			}
			return w.Flush()
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
