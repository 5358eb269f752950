package driver

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thanm/calltestgen/generator"
)

func mkConfig(out string, funcs, ops int) Config {
	t := generator.DefaultTunables()
	t.NumFuncs = funcs
	t.NumOps = ops
	return Config{Output: out, Seed: 0, Tunables: t}
}

func TestRunFile(t *testing.T) {
	td := t.TempDir()
	fn := filepath.Join(td, "call.wat")
	require.NoError(t, Run(mkConfig(fn, 8, 16)))

	got, err := os.ReadFile(fn)
	require.NoError(t, err)

	var want bytes.Buffer
	require.NoError(t, RunTo(&want, mkConfig("", 8, 16)))
	assert.Equal(t, want.String(), string(got))

	ents, err := os.ReadDir(td)
	require.NoError(t, err)
	assert.Len(t, ents, 1, "temporary file left behind")
}

func TestRunBadConfigKeepsOldFile(t *testing.T) {
	td := t.TempDir()
	fn := filepath.Join(td, "call.wat")
	require.NoError(t, os.WriteFile(fn, []byte("old"), 0644))

	err := Run(mkConfig(fn, 0, 16))
	assert.True(t, errors.Is(err, generator.ErrBadTunables))

	got, err := os.ReadFile(fn)
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))
	ents, err := os.ReadDir(td)
	require.NoError(t, err)
	assert.Len(t, ents, 1)
}

func TestRunMissingDir(t *testing.T) {
	err := Run(mkConfig(filepath.Join(t.TempDir(), "nope", "call.wat"), 1, 1))
	assert.Error(t, err)
}

func TestDumpStream(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, DumpStream(&b, 0, 3))
	assert.Equal(t, []string{
		"13080132717333068652",
		"8594738769458413623",
		"12896916468484187878",
	}, strings.Fields(b.String()))
}
