// Command solstice is a thin demonstration driver: it loads a YAML scene
// fixture, runs one solve against it, and prints the resulting estimator
// table. It is not part of the core solver (spec.md §1, §6 "CLI surface:
// not part of the core") — the minimum surface needed to exercise the
// library end to end.
//
// Grounded on the teacher's root main.go for the overall "parse flags, build
// a scene, run, print a report" shape, adapted from stdlib flag to cobra the
// way observerly-skysolve and jmh-devel-photonic wire their own root
// commands.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/arfontalvo/solstice/internal/obslog"
	"github.com/arfontalvo/solstice/pkg/estimator"
	"github.com/arfontalvo/solstice/pkg/scene"
	"github.com/arfontalvo/solstice/pkg/scenecfg"
	"github.com/arfontalvo/solstice/pkg/solver"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "solstice:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		scenePath string
		threads   int
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "solstice",
		Short: "Run a solstice Monte-Carlo solve against a YAML scene fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), scenePath, threads, verbose)
		},
	}

	cmd.Flags().StringVarP(&scenePath, "scene", "s", "", "path to a YAML scene fixture (required)")
	cmd.Flags().IntVarP(&threads, "threads", "t", 0, "worker threads (0 = the fixture's thread count, or runtime.NumCPU() if that is 0 too)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable development logging")
	cmd.MarkFlagRequired("scene")

	return cmd
}

func run(ctx context.Context, scenePath string, threads int, verbose bool) error {
	data, err := os.ReadFile(scenePath)
	if err != nil {
		return errors.Wrap(err, "solstice: reading scene fixture")
	}

	built, err := scenecfg.Load(data)
	if err != nil {
		return errors.Wrap(err, "solstice: loading scene fixture")
	}

	logger := obslog.Logger(obslog.Nop{})
	if verbose {
		zl, err := obslog.NewDevelopment()
		if err != nil {
			return errors.Wrap(err, "solstice: building logger")
		}
		defer zl.Sync()
		logger = zl
	}

	cfg := built.Solve
	cfg.Logger = logger
	if threads > 0 {
		cfg.Threads = threads
	}

	start := time.Now()
	est, err := solver.Solve(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "solstice: solve")
	}
	elapsed := time.Since(start)

	printReport(est, elapsed)
	return nil
}

func printReport(est *estimator.Estimator, elapsed time.Duration) {
	fmt.Printf("realisations: %d (failed %d) in %v\n", est.RealisationCount, est.FailedCount, elapsed)
	fmt.Printf("global missing: %.3f  global shadow: %.3f\n",
		est.GlobalMissing.Mean(est.RealisationCount), est.GlobalShadow.Mean(est.RealisationCount))

	for key, acc := range est.Receivers {
		side := "front"
		if key.Side == scene.Back {
			side = "back"
		}
		irr := acc.Irradiance.Mean(est.RealisationCount)
		se := acc.Irradiance.StandardError(est.RealisationCount)
		fmt.Printf("receiver instance=%d side=%s: irradiance=%.3f se=%.3f absorptivity_loss=%.3f reflectivity_loss=%.3f cos_loss=%.3f\n",
			key.Instance.ID, side, irr, se,
			acc.AbsorptivityLoss.Mean(est.RealisationCount),
			acc.ReflectivityLoss.Mean(est.RealisationCount),
			acc.CosLoss.Mean(est.RealisationCount))
	}
}
