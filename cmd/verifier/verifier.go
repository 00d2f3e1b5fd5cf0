// Package verifier registers the verifier's cobra subcommands, one
// Register(rootCmd) function per subcommand package, matching the
// teacher's cmds/auditor layout.
package verifier

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/evverify/catalog"
	"github.com/thechriswalker/evverify/engine"
	"github.com/thechriswalker/evverify/report"
)

func parsePhase(s string) (catalog.Phase, error) {
	switch s {
	case "setup":
		return catalog.PhaseSetup, nil
	case "tally":
		return catalog.PhaseTally, nil
	default:
		return 0, fmt.Errorf("unknown phase %q (want setup or tally)", s)
	}
}

// Register adds the `list` and `run` subcommands to rootCmd.
func Register(rootCmd *cobra.Command) {
	registerList(rootCmd)
	registerRun(rootCmd)
}

func registerList(rootCmd *cobra.Command) {
	var phaseStr string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the verifications known to the catalog for a phase",
		Run: func(cmd *cobra.Command, args []string) {
			phase, err := parsePhase(phaseStr)
			if err != nil {
				log.Fatal().Err(err).Msg("invalid --phase")
			}
			d := engine.New(engine.Config{MaxConcurrency: runtime.GOMAXPROCS(0)})
			descriptors, err := d.ListVerifications(phase)
			if err != nil {
				log.Fatal().Err(err).Msg("listing verifications")
			}
			for _, desc := range descriptors {
				fmt.Printf("%-8s %-14s %-12s %s\n", desc.ID, desc.Category, desc.Status, desc.Name)
			}
		},
	}
	cmd.Flags().StringVar(&phaseStr, "phase", "setup", "Which phase to list verifications for (setup|tally)")
	rootCmd.AddCommand(cmd)
}

func registerRun(rootCmd *cobra.Command) {
	var (
		phaseStr       string
		rootPath       string
		excluded       []string
		maxConcurrency int
		trustStorePath string
		historyPath    string
		reportDir      string
		openReport     bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the chosen verifications for a dataset",
		Run: func(cmd *cobra.Command, args []string) {
			phase, err := parsePhase(phaseStr)
			if err != nil {
				log.Fatal().Err(err).Msg("invalid --phase")
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			go func() {
				select {
				case sig := <-sigCh:
					log.Info().Str("signal", sig.String()).Msg("received signal, cancelling run")
					cancel()
				case <-ctx.Done():
				}
			}()

			cfg := engine.Config{
				MaxConcurrency: maxConcurrency,
				TrustStorePath: trustStorePath,
			}
			d := engine.New(cfg)

			sinks := []report.Sink{report.NewConsoleSink(log.Logger)}
			if historyPath != "" {
				hist, err := report.NewSQLiteHistory(historyPath)
				if err != nil {
					log.Fatal().Err(err).Msg("opening run history database")
				}
				defer hist.Close()
				sinks = append(sinks, hist)
			}
			if reportDir != "" {
				sinks = append(sinks, report.NewHTMLSink(reportDir, openReport))
			}

			info, err := d.RunAll(ctx, rootPath, phase, excluded, sinks)
			if err != nil {
				log.Fatal().Err(err).Msg("running verifications")
			}

			log.Info().
				Str("run", info.ID.String()).
				Str("outcome", info.Outcome().String()).
				Int("anomalies", len(info.Anomalies())).
				Msg("done")

			if info.Outcome() != catalog.Success {
				os.Exit(1)
			}
		},
	}
	cmd.Flags().StringVar(&phaseStr, "phase", "setup", "Which phase dataset to run verifications against (setup|tally)")
	cmd.Flags().StringVar(&rootPath, "dataset", ".", "Path to the dataset root")
	cmd.Flags().StringSliceVar(&excluded, "exclude", nil, "Verification ids to skip")
	cmd.Flags().IntVar(&maxConcurrency, "max-concurrency", 0, "Concurrency bound (0 = hardware parallelism)")
	cmd.Flags().StringVar(&trustStorePath, "trust-store", "", "Path to a directory of X.509 certificates, keyed by authority name")
	cmd.Flags().StringVar(&historyPath, "history", "", "Path to a SQLite database to persist run history into")
	cmd.Flags().StringVar(&reportDir, "report-dir", "", "Directory to render an HTML summary page into")
	cmd.Flags().BoolVar(&openReport, "open-report", false, "Open the rendered HTML summary in the system browser")
	rootCmd.AddCommand(cmd)
}
