package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/sitequery/internal/config"
	"github.com/yanizio/sitequery/internal/runner"
	"github.com/yanizio/sitequery/internal/seed"
	"github.com/yanizio/sitequery/internal/server"
)

// seedFlags are shared by `run` and `seed`.
type seedFlags struct {
	sites    int
	slugs    int
	randSeed uint64
}

func (f *seedFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.sites, "sites", seed.DefaultSites, "number of sites to insert")
	fs.IntVar(&f.slugs, "slugs", seed.DefaultSlugs, "number of url slugs to insert")
	fs.Uint64Var(&f.randSeed, "rand-seed", 0, "seed for slug to site assignment (0 = random)")
}

// options starts from the config file and applies the flags the user set.
func (f *seedFlags) options(fs *pflag.FlagSet, cfg config.Seed) seed.Options {
	opts := seed.Options{
		Sites:     cfg.Sites,
		Slugs:     cfg.Slugs,
		BatchSize: cfg.BatchSize,
		RandSeed:  cfg.RandSeed,
	}
	if fs.Changed("sites") {
		opts.Sites = f.sites
	}
	if fs.Changed("slugs") {
		opts.Slugs = f.slugs
	}
	if fs.Changed("rand-seed") {
		opts.RandSeed = f.randSeed
	}
	return opts
}

func runCommand(a *app) *cobra.Command {
	var (
		sf     seedFlags
		doSeed bool
		verify bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Optionally seed, then run the join and the aggregation queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := runner.Options{
				Seed:   doSeed,
				SeedOp: sf.options(cmd.Flags(), a.cfg.Seed),
				Verify: verify,
			}
			return a.run(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&doSeed, "seed", false, "insert synthetic data before querying")
	cmd.Flags().BoolVar(&verify, "verify", false, "check that both strategies describe the same sites and slugs")
	sf.register(cmd.Flags())
	return cmd
}

// run executes the runner and, when metrics.listen_addr is set, serves
// /metrics and /healthz until the context is cancelled.
func (a *app) run(ctx context.Context, cmd *cobra.Command, opts runner.Options) error {
	g, gctx := errgroup.WithContext(ctx)

	addr := a.cfg.Metrics.ListenAddr
	if addr != "" {
		srv := server.New(addr, server.Router(a.db, a.log))
		g.Go(func() error { return server.Serve(gctx, srv, a.log) })
	}

	g.Go(func() error {
		rep, err := runner.New(a.repo, cmd.OutOrStdout(), a.log).Run(gctx, opts)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		a.log.Infow("run complete", "flat_rows", rep.FlatRows, "nested_rows", rep.NestedRows)
		if addr != "" {
			a.log.Infow("serving metrics until interrupted", "addr", addr)
		}
		return nil
	})

	return g.Wait()
}
