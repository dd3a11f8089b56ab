package treehash

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagMode          string
	flagLogLevel      string
	flagRoot          string
	flagLedger        string
	flagExclude       []string
	flagInclude       []string
	flagExcludeGlobs  string
	flagIncludeGlobs  string
	flagKey           string
	flagClean         bool
	flagCheckRemoved  bool
	flagNoLinkedDirs  bool
	flagNoLinkedFiles bool
	flagHashAlg       string
	flagTrackedOnly   bool
	flagLogFormat     string
	flagSummary       bool
	flagProgress      bool
	flagAuditLog      string
	flagMetricsFile   string
	flagMaxRate       int64
	flagReportURL     string
	flagReportToken   string
	flagNoColor       bool
	flagNoUpdateCheck bool

	version = "0.1.0"
)

// keyEnv supplies the HMAC key when -k is not given.
const keyEnv = "TREEHASH_HMAC_KEY"

// rootCmd is the base Cobra command for the treehash CLI.
var rootCmd = &cobra.Command{
	Use:   "treehash -r ROOT -f LEDGER -m MODE",
	Short: "Record and verify digests of a directory tree",
	Long: `treehash keeps a ledger of content digests for every file below a root
directory and checks the tree against it, to detect corruption, tampering or
unexpected modification.

Exit codes: 0 success, 1 at least one file unsuccessful, 2 at least one error
reported, -1 invalid arguments or configuration, -2 failure reading or
writing the ledger.`,
	Example: `  treehash -r /srv/archive -f /srv/archive.ledger.json -m update
  treehash -f /srv/archive.ledger.json -m verify -l e
  cat ledger.json | treehash -r . -f - -m update_new > ledger.new.json
  treehash -r /srv/archive -f /srv/archive.ledger.json --check-removed`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version,
	RunE:          runRoot,
}

// Execute runs the treehash CLI and exits with its status. It should be
// called by the main package.
func Execute() {
	err := rootCmd.Execute()
	if reportable(err) {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(exitCode(err))
}

func init() {
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &exitError{code: exitInvalid, err: err}
	})

	f := rootCmd.Flags()
	f.StringVarP(&flagMode, "mode", "m", "", "mode of operation: update | update_new | update_modified | verify")
	f.StringVarP(&flagLogLevel, "loglevel", "l", "", "q: quiet, e: errors and unsuccessful files, w: + warnings (default), a: all")
	f.StringVarP(&flagRoot, "root", "r", "", "root directory; optional when the ledger stores one")
	f.StringVarP(&flagLedger, "hashfile", "f", "", "ledger file, or - for stdin/stdout")
	f.StringArrayVarP(&flagExclude, "exclude", "e", nil, "file or directory to exclude (relative to --root); repeatable")
	f.StringArrayVarP(&flagInclude, "include", "i", nil, "file or directory to include (relative to --root); repeatable. When set only these are used")
	f.StringVar(&flagExcludeGlobs, "exclude-globs", "", "comma-separated globs to exclude, e.g. '**/*.tmp'")
	f.StringVar(&flagIncludeGlobs, "include-globs", "", "comma-separated globs to include")
	f.StringVarP(&flagKey, "hmac-key", "k", "", "key for HMAC digests (or set "+keyEnv+")")
	f.BoolVarP(&flagClean, "clean", "c", false, "remove ledger entries of files that are not selected")
	f.BoolVar(&flagCheckRemoved, "check-removed", false, "print ledger entries whose files no longer exist")
	f.BoolVar(&flagNoLinkedDirs, "no-linked-dirs", false, "do not descend into symlinked directories")
	f.BoolVar(&flagNoLinkedFiles, "no-linked-files", false, "skip symlinked files")
	f.StringVar(&flagHashAlg, "hash-alg", "", "digest algorithm (see 'treehash algorithms'); default from the ledger or Keccak_512")
	f.BoolVar(&flagTrackedOnly, "tracked-only", false, "only consider files in the git index")
	f.StringVar(&flagLogFormat, "log-format", "", "text | json")
	f.BoolVar(&flagSummary, "summary", false, "print a summary when the run completes")
	f.BoolVar(&flagProgress, "progress", false, "show progress on stderr")
	f.StringVar(&flagAuditLog, "audit-log", "", "append a JSON line per run to this file")
	f.StringVar(&flagMetricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
	f.Int64Var(&flagMaxRate, "max-rate", 0, "limit digest reads to this many bytes per second (0 = unlimited)")
	f.StringVar(&flagReportURL, "report-url", "", "POST a JSON run report to this URL")
	f.StringVar(&flagReportToken, "report-token", "", "bearer token for --report-url")

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	pf.BoolVar(&flagNoUpdateCheck, "no-update-check", false, "disable update check")

	registerFlagCompletions()
}
