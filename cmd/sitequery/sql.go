package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yanizio/sitequery/internal/query"
	"github.com/yanizio/sitequery/internal/runner"
	"github.com/yanizio/sitequery/internal/schema"
)

func sqlCommand() *cobra.Command {
	var (
		dialect string
		ddl     bool
	)

	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Print the generated queries (or --ddl) without connecting",
		Args:  cobra.NoArgs,
		// Overrides the root hook: no config, no logger, no database.
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := schema.ParseDialect(dialect)
			if err != nil {
				return err
			}
			if ddl {
				return printDDL(cmd.OutOrStdout(), d)
			}
			return printQueries(cmd.OutOrStdout(), d)
		},
	}
	cmd.Flags().StringVar(&dialect, "dialect", schema.Postgres.String(), "postgres or mysql")
	cmd.Flags().BoolVar(&ddl, "ddl", false, "print CREATE TABLE statements instead of the queries")
	return cmd
}

func printQueries(w io.Writer, d schema.Dialect) error {
	flat, err := query.FlatJoin(d, schema.SiteURLSlugs)
	if err != nil {
		return err
	}
	nested, err := query.NestedAggregate(d, schema.SiteURLSlugs)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n%s\n\n%s\n%s\n", runner.LabelFlat, flat.SQL, runner.LabelNested, nested.SQL)
	return err
}

func printDDL(w io.Writer, d schema.Dialect) error {
	_, err := fmt.Fprintf(w, "%s\n\n%s\n",
		schema.CreateTable(d, schema.Sites.Table),
		schema.CreateTable(d, schema.SiteURLSlug.Table, schema.SiteOfSlug))
	return err
}
