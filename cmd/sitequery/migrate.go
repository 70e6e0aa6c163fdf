package main

import (
	"github.com/spf13/cobra"

	"github.com/yanizio/sitequery/internal/migrations"
)

func migrateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or drop the sites and site_url_slug tables",
	}

	step := func(use, short string, fn func(*migrations.Migrator) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				m, err := migrations.New(a.db, a.repo.Dialect(), a.log)
				if err != nil {
					return err
				}
				return fn(m)
			},
		}
	}

	cmd.AddCommand(
		step("up", "Apply all pending migrations", (*migrations.Migrator).Up),
		step("down", "Revert all migrations", (*migrations.Migrator).Down),
	)
	return cmd
}
