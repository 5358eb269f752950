// Program to generate the call dispatch benchmark module: a bank of
// trivial functions that each store a random constant into a global, and
// a start function that calls random members of the bank between two
// timer toggles.

package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thanm/calltestgen/driver"
	"github.com/thanm/calltestgen/generator"
)

const appName = "calltestgen"

func newRootCmd() *cobra.Command {
	tunables := generator.DefaultTunables()
	cfg := driver.Config{}
	verbose := 0
	noEntrypoint := false
	dumpStream := 0

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Generate the call dispatch benchmark module (WebAssembly text)",
		Example: "  calltestgen -n 2048 -c 512 -s 0 -o call.wat\n\n" +
			"  \tgenerates 2048 functions and 512 calls into call.wat\n" +
			"  \tusing random seed 0",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setVerbosity(verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Debugf("seed is %d", cfg.Seed)
			if dumpStream > 0 {
				return driver.DumpStream(cmd.OutOrStdout(), cfg.Seed, dumpStream)
			}
			if noEntrypoint {
				tunables.EntrypointStub = false
			}
			cfg.Tunables = tunables
			if cfg.Output == "" || cfg.Output == "-" {
				return driver.RunTo(cmd.OutOrStdout(), cfg)
			}
			return driver.Run(cfg)
		},
	}

	cmd.Flags().IntVarP(&tunables.NumFuncs, "funcs", "n", tunables.NumFuncs, "number of functions to generate")
	cmd.Flags().IntVarP(&tunables.NumOps, "calls", "c", tunables.NumOps, "number of calls in the driver function")
	cmd.Flags().Uint64VarP(&cfg.Seed, "seed", "s", 0, "random seed")
	cmd.Flags().StringVarP(&cfg.Output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&tunables.MemoryPages, "memory-pages", tunables.MemoryPages, "size of the exported memory in pages")
	cmd.Flags().BoolVar(&noEntrypoint, "no-entrypoint", false, "omit the user_entrypoint stub")
	cmd.Flags().BoolVar(&tunables.NonZeroCheck, "nonzero-check", tunables.NonZeroCheck, "redraw zero constants so the final division cannot trap")
	cmd.Flags().IntVar(&dumpStream, "dump-stream", 0, "print this many raw 64-bit stream values and exit")
	cmd.Flags().CountVarP(&verbose, "verbose", "v", "verbose trace output level")
	_ = cmd.MarkFlagFilename("output", "wat")

	return cmd
}

func setVerbosity(v int) {
	generator.Verbctl = v
	switch {
	case v >= 2:
		log.SetLevel(log.DebugLevel)
	case v == 1:
		log.SetLevel(log.InfoLevel)
	default:
		log.SetLevel(log.WarnLevel)
	}
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}
