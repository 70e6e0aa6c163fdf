package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanizio/sitequery/internal/schema"
	"github.com/yanizio/sitequery/internal/seed"
)

func seedCommand(a *app) *cobra.Command {
	var sf seedFlags

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert synthetic sites and url slugs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			res, err := seed.Run(ctx, a.repo, sf.options(cmd.Flags(), a.cfg.Seed), a.log)
			if err != nil {
				return err
			}

			sites, err := a.repo.Count(ctx, schema.Sites.Table)
			if err != nil {
				return err
			}
			slugs, err := a.repo.Count(ctx, schema.SiteURLSlug.Table)
			if err != nil {
				return err
			}
			orphans, err := a.repo.Orphans(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Inserted %d sites and %d url slugs (rand seed %d)\n",
				len(res.SiteIDs), res.Slugs, res.RandSeed)
			fmt.Fprintf(out, "Table totals: %s=%d %s=%d orphaned slugs=%d\n",
				schema.Sites.Name, sites, schema.SiteURLSlug.Name, slugs, orphans)
			return nil
		},
	}
	sf.register(cmd.Flags())
	return cmd
}
