package cli

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zoobzio/dynq/declarative"
	"github.com/zoobzio/dynq/sqlexec"

	// Drivers selectable with --driver.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	Dialect   string
	Driver    string
	DSN       string
	Params    []string
	SlowQuery time.Duration
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{}

	cmd := &cobra.Command{
		Use:   "exec <document>",
		Short: "Run a query document against a database",
		Long: `Compile a declarative query document and run it through database/sql,
printing the result rows.

The driver defaults to the one registered for the dialect (pgx, sqlserver,
mysql or sqlite).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Dialect, "dialect", "d", "", "SQL dialect (default from config, else postgres)")
	cmd.Flags().StringVar(&opts.Driver, "driver", "", "database/sql driver name")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "data source name")
	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "parameter value as name=value (repeatable)")
	cmd.Flags().DurationVar(&opts.SlowQuery, "slow", 0, "log statements slower than this (default from config, else 100ms)")

	return cmd
}

func runExec(cmd *cobra.Command, rootOpts *RootOptions, opts *ExecOptions, path string) error {
	cfg := rootOpts.Config
	dialect := resolveDialect(opts.Dialect, cfg)
	if dialect == "all" {
		return errors.New("exec needs a single dialect")
	}
	r, err := Dialect(dialect)
	if err != nil {
		return err
	}

	driver := firstNonEmpty(opts.Driver, cfg.Driver, dialects[dialect].driver)
	if driver == "" {
		return fmt.Errorf("no driver for dialect %s: set --driver", dialect)
	}
	dsn := firstNonEmpty(opts.DSN, cfg.DSN)
	if dsn == "" {
		return errors.New("no data source: set --dsn or dsn in the config file")
	}

	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	params, err := parseParams(opts.Params)
	if err != nil {
		return err
	}
	q, err := declarative.Build(doc, params)
	if err != nil {
		return err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("open %s: %w", driver, err)
	}
	defer db.Close()

	execOpts := []sqlexec.Option{sqlexec.WithLogger(rootOpts.logger(cmd.ErrOrStderr()))}
	if slow := opts.SlowQuery; slow > 0 {
		execOpts = append(execOpts, sqlexec.WithSlowThreshold(slow))
	} else if cfg.SlowQuery > 0 {
		execOpts = append(execOpts, sqlexec.WithSlowThreshold(cfg.SlowQuery))
	}
	ex := sqlexec.New(db, r, execOpts...)

	rows, err := ex.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	defer rows.Close()

	cols, records, err := scanAll(rows)
	if err != nil {
		return err
	}

	if rootOpts.Format == "json" {
		out := make([]map[string]any, len(records))
		for i, rec := range records {
			m := make(map[string]any, len(cols))
			for j, c := range cols {
				m[c] = rec[j]
			}
			out[i] = m
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(cols, "\t"))
	for _, rec := range records {
		cells := make([]string, len(rec))
		for i, v := range rec {
			cells[i] = cell(v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if rootOpts.Config.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d row(s); %s\n", len(records), ex.Stats().Snapshot())
	}
	return nil
}

func scanAll(rows *sql.Rows) ([]string, [][]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var records [][]any
	for rows.Next() {
		rec := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range rec {
			ptrs[i] = &rec[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		for i, v := range rec {
			if b, ok := v.([]byte); ok {
				rec[i] = string(b)
			}
		}
		records = append(records, rec)
	}
	return cols, records, rows.Err()
}

func cell(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
