package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treehash/treehash/internal/engine"
	"github.com/treehash/treehash/internal/ledger"
)

func TestObserveAndWriteFile(t *testing.T) {
	m := New()
	res := engine.Result{
		Mode:      engine.ModeVerify,
		Settings:  ledger.Settings{RootDir: "/data"},
		Succeeded: 5,
		Failed:    2,
		Warnings:  1,
		Entries:   7,
		Duration:  2 * time.Second,
	}
	m.Observe(res, nil, time.Unix(1_700_000_000, 0))

	path := filepath.Join(t.TempDir(), "treehash.prom")
	require.NoError(t, m.WriteFile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)

	for _, want := range []string{
		`treehash_files_processed_total{mode="verify",result="ok",root="/data"} 5`,
		`treehash_files_processed_total{mode="verify",result="failed",root="/data"} 2`,
		`treehash_warnings_total{mode="verify",root="/data"} 1`,
		`treehash_ledger_entries{mode="verify",root="/data"} 7`,
		`treehash_run_duration_seconds{mode="verify",root="/data"} 2`,
		`treehash_last_run_timestamp_seconds{mode="verify",root="/data"} 1.7e+09`,
		`treehash_run_status{mode="verify",root="/data"} 1`,
	} {
		assert.Contains(t, out, want)
	}
}

func TestObserve_Fatal(t *testing.T) {
	m := New()
	m.Observe(engine.Result{Mode: engine.ModeUpdate}, errors.New("boom"), time.Now())
	mfs, err := m.reg.Gather()
	require.NoError(t, err)
	var status float64 = -1
	for _, mf := range mfs {
		if mf.GetName() == "treehash_run_status" {
			status = mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	assert.Equal(t, float64(3), status)
}
