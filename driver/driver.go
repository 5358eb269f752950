// Package driver writes generated call benchmark modules to their
// destination.
package driver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/thanm/calltestgen/chacha"
	"github.com/thanm/calltestgen/generator"
)

type Config struct {
	// Output is a file path; "" or "-" selects stdout.
	Output   string
	Seed     uint64
	Tunables generator.TunableParams
}

// Run generates the module described by cfg. When writing to a file the
// module goes to a temporary file first and is renamed into place, so
// an existing fixture is never left truncated.
func Run(cfg Config) error {
	if cfg.Output == "" || cfg.Output == "-" {
		return RunTo(os.Stdout, cfg)
	}

	dir := filepath.Dir(cfg.Output)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(cfg.Output)+".*")
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := RunTo(tmp, cfg); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), cfg.Output); err != nil {
		return fmt.Errorf("installing %s: %w", cfg.Output, err)
	}
	log.Infof("wrote %s", cfg.Output)
	return nil
}

func RunTo(w io.Writer, cfg Config) error {
	log.WithFields(log.Fields{
		"seed":  cfg.Seed,
		"funcs": cfg.Tunables.NumFuncs,
		"calls": cfg.Tunables.NumOps,
	}).Info("generating call module")

	st, err := generator.GenerateWith(w, chacha.New(cfg.Seed), cfg.Tunables)
	if err != nil {
		return err
	}
	if st.Resampled > 0 {
		log.Infof("redrew %d zero constants", st.Resampled)
	}
	if st.Trap {
		log.Warnf("module divides by zero at exit (last call %d)", st.LastCall)
	}
	log.Debugf("draws: %d constants, %d targets", st.ConstDraws, st.TargetDraws)
	return nil
}

// DumpStream writes the first n 64-bit words of the stream for seed, one
// per line.
func DumpStream(w io.Writer, seed uint64, n int) error {
	r := chacha.New(seed)
	for i := 0; i < n; i++ {
		if _, err := fmt.Fprintf(w, "%d\n", r.Uint64()); err != nil {
			return err
		}
	}
	return nil
}
