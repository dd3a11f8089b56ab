package treehash

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/treehash/treehash/internal/audit"
	"github.com/treehash/treehash/internal/config"
	"github.com/treehash/treehash/internal/digest"
	"github.com/treehash/treehash/internal/engine"
	"github.com/treehash/treehash/internal/files"
	"github.com/treehash/treehash/internal/ledger"
	"github.com/treehash/treehash/internal/metrics"
	"github.com/treehash/treehash/internal/report"
	"github.com/treehash/treehash/internal/tui"
	"github.com/treehash/treehash/internal/update"
	"github.com/treehash/treehash/pkg/core"
)

// settings are the effective options of one invocation after merging flags,
// the local config and the global config.
type settings struct {
	root             string
	algorithm        string
	// defaultAlgorithm comes from a config file and only applies to ledgers
	// that record no algorithm.
	defaultAlgorithm string
	include          []string
	exclude          []string
	includeGlobs     []string
	excludeGlobs     []string
	level            report.Level
	format           string
	noColor          bool
	noLinkedDirs     bool
	noLinkedFiles    bool
	trackedOnly      bool
	maxRate          int64
	auditLog         string
	metricsFile      string
}

// ledgerFile is the ledger named by -f, read up front.
type ledgerFile struct {
	name     string
	path     string
	data     []byte
	writes   bool
	dst      io.Writer
	truncate bool
	file     *os.File
}

func (lf *ledgerFile) Close() error {
	if lf.file == nil {
		return nil
	}
	return lf.file.Close()
}

func runRoot(cmd *cobra.Command, _ []string) error {
	maintenance := flagClean || flagCheckRemoved
	switch {
	case flagClean && flagCheckRemoved:
		return invalidf("-c and --check-removed cannot be combined")
	case maintenance && (flagMode != "" || flagKey != ""):
		return invalidf("-c and --check-removed cannot be combined with -m or -k")
	case !maintenance && flagMode == "":
		return invalidf("a mode is required: -m update|update_new|update_modified|verify")
	case flagLedger == "":
		return invalidf("a ledger file is required: -f FILE or -f -")
	}

	var mode engine.Mode
	if !maintenance {
		m, err := engine.ParseMode(flagMode)
		if err != nil {
			return &exitError{code: exitInvalid, err: err}
		}
		mode = m
	}
	writes := flagClean || (!maintenance && mode.Updates())

	lf, err := openLedger(flagLedger, writes)
	if err != nil {
		return err
	}
	defer lf.Close()

	st, err := resolveSettings(lf)
	if err != nil {
		return err
	}

	// With the ledger on stdout every report goes to stderr.
	out := io.Writer(os.Stdout)
	if lf.name == "-" {
		out = os.Stderr
	}
	sink, closeSink := newReporter(out, st)
	defer closeSink()
	if err := lf.openForWrite(); err != nil {
		return err
	}

	switch {
	case flagClean:
		return runClean(cmd, lf, st, sink, out)
	case flagCheckRemoved:
		return runCheckRemoved(lf, st, sink)
	default:
		return runMode(cmd, mode, lf, st, sink, out)
	}
}

// openLedger checks the ledger path and reads its current content. The
// file is not created here; see openForWrite.
func openLedger(name string, writes bool) (*ledgerFile, error) {
	lf := &ledgerFile{name: name, writes: writes}
	if name == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, &exitError{code: exitFailure, err: fmt.Errorf("read ledger from stdin: %w", err)}
		}
		lf.data = data
		if writes {
			lf.dst = os.Stdout
		}
		return lf, nil
	}

	p, err := filepath.Abs(name)
	if err != nil {
		return nil, invalidf("ledger %s: %v", name, err)
	}
	lf.path = p
	info, err := os.Stat(p)
	switch {
	case err == nil && !info.Mode().IsRegular():
		return nil, invalidf("ledger %s is not a regular file", name)
	case errors.Is(err, os.ErrNotExist):
		if !writes {
			return nil, invalidf("ledger %s does not exist", name)
		}
		return lf, nil
	case err != nil:
		return nil, &exitError{code: exitFailure, err: fmt.Errorf("ledger %s: %w", name, err)}
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, &exitError{code: exitFailure, err: fmt.Errorf("read ledger: %w", err)}
	}
	lf.data = data
	return lf, nil
}

// openForWrite opens the ledger file for writing back, creating it when
// missing. It is a no-op for read-only runs and for stdout.
func (lf *ledgerFile) openForWrite() error {
	if !lf.writes || lf.path == "" {
		return nil
	}
	f, err := os.OpenFile(lf.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return &exitError{code: exitFailure, err: fmt.Errorf("open ledger: %w", err)}
	}
	lf.dst, lf.truncate, lf.file = f, true, f
	return nil
}

// storedRoot returns the root directory recorded in a ledger payload, if
// any. A ledger that cannot be used at all is reported as such.
func storedRoot(data []byte) (string, error) {
	l, outcome, err := ledger.Parse(data)
	if outcome.Fatal() {
		return "", &exitError{code: exitFailure, err: &engine.Error{Kind: engine.KindLedger, Err: err}}
	}
	if l.Settings == nil {
		return "", nil
	}
	return l.Settings.RootDir, nil
}

func resolveSettings(lf *ledgerFile) (settings, error) {
	var st settings
	root := flagRoot
	if root == "" {
		stored, err := storedRoot(lf.data)
		if err != nil {
			return st, err
		}
		root = stored
	}
	if root == "" {
		return st, invalidf("%v", ledger.ErrNoRoot)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return st, invalidf("root %s: %v", root, err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return st, invalidf("root %s: %v", root, engine.ErrRootNotDir)
	}
	st.root = filepath.Clean(abs)

	lc, err := config.LoadLocal(st.root)
	if err != nil && !errors.Is(err, config.ErrNotFound) {
		return st, invalidf("local config: %v", err)
	}
	gc, err := config.LoadGlobal()
	if err != nil && !errors.Is(err, config.ErrNotFound) {
		return st, invalidf("global config: %v", err)
	}

	// Only --hash-alg overrides the algorithm a ledger records.
	st.algorithm = flagHashAlg
	st.defaultAlgorithm = pickString("", lc.Algorithm, gc.Algorithm)
	for _, alg := range []string{st.algorithm, st.defaultAlgorithm} {
		if alg == "" {
			continue
		}
		if _, err := digest.Parse(alg); err != nil {
			return st, invalidf("%v", err)
		}
	}
	st.level, err = report.ParseLevel(pickString(flagLogLevel, lc.LogLevel, gc.LogLevel))
	if err != nil {
		return st, &exitError{code: exitInvalid, err: err}
	}
	st.format = pickString(flagLogFormat, lc.LogFormat, gc.LogFormat)
	if st.format == "" {
		st.format = "text"
	}
	if st.format != "text" && st.format != "json" {
		return st, invalidf("invalid log format %q (want text or json)", st.format)
	}
	st.include = pickStrings(flagInclude, lc.Include, gc.Include)
	st.exclude = pickStrings(flagExclude, lc.Exclude, gc.Exclude)
	st.includeGlobs = files.ParseGlobsList(pickString(flagIncludeGlobs, lc.IncludeGlobs, gc.IncludeGlobs))
	st.excludeGlobs = files.ParseGlobsList(pickString(flagExcludeGlobs, lc.ExcludeGlobs, gc.ExcludeGlobs))
	for _, g := range append(append([]string(nil), st.includeGlobs...), st.excludeGlobs...) {
		if !files.ValidGlob(g) {
			return st, invalidf("invalid glob %q", g)
		}
	}
	st.noColor = pickBool(flagNoColor, lc.NoColor, gc.NoColor)
	st.noLinkedDirs = pickBool(flagNoLinkedDirs, lc.NoLinkedDirs, gc.NoLinkedDirs)
	st.noLinkedFiles = pickBool(flagNoLinkedFiles, lc.NoLinkedFiles, gc.NoLinkedFiles)
	st.trackedOnly = pickBool(flagTrackedOnly, lc.TrackedOnly, gc.TrackedOnly)
	st.maxRate = pickInt64(flagMaxRate, lc.MaxRate, gc.MaxRate)
	if st.maxRate < 0 {
		return st, invalidf("--max-rate must not be negative")
	}
	st.auditLog = absOrEmpty(pickString(flagAuditLog, lc.AuditLog, gc.AuditLog))
	st.metricsFile = absOrEmpty(pickString(flagMetricsFile, lc.MetricsFile, gc.MetricsFile))
	return st, nil
}

func absOrEmpty(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func newReporter(out io.Writer, st settings) (engine.Sink, func()) {
	if st.format == "json" {
		logger := report.NewJSONLogger(os.Stderr, st.level)
		return report.ZapReporter{Log: logger}, func() { _ = logger.Sync() }
	}
	return report.NewTextReporter(out, st.level, st.noColor), func() {}
}

// selectOptions describes the candidate list. The ledger, audit log and
// metrics file are never candidates.
func selectOptions(lf *ledgerFile, st settings, sink engine.Sink) files.Options {
	return files.Options{
		Root:             st.root,
		Include:          st.include,
		Exclude:          st.exclude,
		IncludeGlobs:     st.includeGlobs,
		ExcludeGlobs:     st.excludeGlobs,
		FollowDirLinks:   !st.noLinkedDirs,
		IncludeFileLinks: !st.noLinkedFiles,
		TrackedOnly:      st.trackedOnly,
		Omit:             []string{lf.path, st.auditLog, st.metricsFile},
		Warn:             sink.Warning,
	}
}

func runMode(cmd *cobra.Command, mode engine.Mode, lf *ledgerFile, st settings, reporter engine.Sink, out io.Writer) error {
	candidates, err := files.Select(selectOptions(lf, st, reporter))
	if err != nil {
		return &exitError{code: exitFailure, err: err}
	}

	key := []byte(flagKey)
	if len(key) == 0 {
		key = []byte(os.Getenv(keyEnv))
	}

	var failed []string
	collector := engine.SinkFuncs{OnFileProcessed: func(path string, ok bool) {
		if !ok {
			failed = append(failed, path)
		}
	}}

	var auditLog *audit.AuditLog
	if st.auditLog != "" {
		auditLog = audit.NewAuditLog(st.auditLog)
		if mode.Updates() {
			if last := auditLog.LastFingerprint(ledgerID(lf)); last != "" && last != engine.Fingerprint(lf.data) {
				reporter.Warning("ledger changed since the last recorded run", lf.name)
			}
		}
	}

	cfg := engine.Config{
		Mode:             mode,
		Root:             st.root,
		Algorithm:        st.algorithm,
		DefaultAlgorithm: st.defaultAlgorithm,
		Key:              key,
		Files:            candidates,
		Source:           bytes.NewReader(lf.data),
		Destination:      lf.dst,
		Truncate:         lf.truncate,
		LedgerName:       lf.name,
		Sink:             engine.Multi(reporter, collector),
		Digest:           &digest.Computer{Limiter: digest.NewLimiter(st.maxRate)},
	}
	finish := startProgress(mode, len(candidates))
	cfg.Progress = finish.step

	res, runErr := engine.Run(cfg)
	if err := finish.done(); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	if st.metricsFile != "" {
		m := metrics.New()
		m.Observe(res, runErr, time.Now())
		if err := m.WriteFile(st.metricsFile); err != nil {
			fmt.Fprintln(os.Stderr, "warning: failed to write metrics:", err)
		}
	}
	if runErr != nil {
		return engineError(runErr)
	}

	if auditLog != nil {
		rec := audit.CreateRunRecord(res, ledgerID(lf), len(key) > 0, failed)
		if err := auditLog.LogRun(rec); err != nil {
			fmt.Fprintln(os.Stderr, "warning: failed to write audit log:", err)
		}
	}
	if flagReportURL != "" {
		if err := uploadRun(st.root, flagReportURL, flagReportToken, res, failed); err != nil {
			fmt.Fprintln(os.Stderr, "warning: report upload failed:", err)
		}
	}
	if flagSummary {
		if err := printSummary(out, st.format, res); err != nil {
			return &exitError{code: exitFailure, err: err}
		}
	}
	checkForUpdate(cmd.Context())
	return statusError(res.Status())
}

// ledgerID names a ledger in the audit log.
func ledgerID(lf *ledgerFile) string {
	if lf.path != "" {
		return lf.path
	}
	return lf.name
}

func printSummary(out io.Writer, format string, res engine.Result) error {
	if format == "json" {
		return core.MarshalResult(out, res)
	}
	return report.PrintSummary(out, res)
}

type progressHandle struct {
	step func()
	done func() error
}

func startProgress(mode engine.Mode, total int) progressHandle {
	if !flagProgress || total == 0 {
		return progressHandle{step: func() {}, done: func() error { return nil }}
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		p := tui.StartProgress(os.Stderr, mode.String(), total)
		return progressHandle{step: p.Step, done: p.Finish}
	}
	return progressHandle{step: tui.TextProgress(os.Stderr, total), done: func() error { return nil }}
}

func runClean(cmd *cobra.Command, lf *ledgerFile, st settings, sink engine.Sink, out io.Writer) error {
	keep, err := files.Select(selectOptions(lf, st, sink))
	if err != nil {
		return &exitError{code: exitFailure, err: err}
	}
	res, err := engine.Prune(engine.MaintenanceConfig{
		Root:             st.root,
		Algorithm:        st.algorithm,
		DefaultAlgorithm: st.defaultAlgorithm,
		Paths:            keep,
		Source:           bytes.NewReader(lf.data),
		Destination:      lf.dst,
		Truncate:         lf.truncate,
		LedgerName:       lf.name,
		Sink:             sink,
	})
	if err != nil {
		return engineError(err)
	}
	if st.level >= report.LevelAll {
		fmt.Fprintf(out, "cleaned ledger: %d kept, %d removed\n", res.Kept, res.Dropped)
	}
	checkForUpdate(cmd.Context())
	return nil
}

func runCheckRemoved(lf *ledgerFile, st settings, sink engine.Sink) error {
	existing, err := files.ListAll(st.root, !st.noLinkedDirs, !st.noLinkedFiles)
	if err != nil {
		return &exitError{code: exitFailure, err: err}
	}
	removed, err := engine.FindRemoved(engine.MaintenanceConfig{
		Root:             st.root,
		Algorithm:        st.algorithm,
		DefaultAlgorithm: st.defaultAlgorithm,
		Paths:            existing,
		Source:           bytes.NewReader(lf.data),
		LedgerName:       lf.name,
		Sink:             sink,
	})
	if err != nil {
		return engineError(err)
	}
	report.PrintRemoved(os.Stdout, files.FilterRemoved(removed, st.root, st.exclude, st.excludeGlobs))
	return nil
}

// checkForUpdate prints a notice when a newer release exists. It only runs
// for interactive sessions.
func checkForUpdate(ctx context.Context) {
	if flagNoUpdateCheck || !term.IsTerminal(int(os.Stderr.Fd())) {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if latest, newer, _ := update.Check(ctx, version, false); newer && latest != "" {
		_, _ = fmt.Fprintf(os.Stderr, "(new version available: v%s)  run 'treehash update' to upgrade\n", latest)
	}
}
