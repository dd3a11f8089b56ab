package treehash

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	buildOnce sync.Once
	binPath   string
	buildErr  error
)

// cliBinary builds the CLI once per test process. Running the binary
// directly keeps the real exit status, which `go run` would replace.
func cliBinary(t *testing.T) string {
	t.Helper()
	buildOnce.Do(func() {
		dir, err := os.MkdirTemp("", "treehash-e2e")
		if err != nil {
			buildErr = err
			return
		}
		binPath = filepath.Join(dir, "treehash")
		if runtime.GOOS == "windows" {
			binPath += ".exe"
		}
		cmd := exec.Command("go", "build", "-o", binPath, ".")
		cmd.Dir = filepath.Clean(filepath.Join("..", ".."))
		cmd.Stderr = os.Stderr
		buildErr = cmd.Run()
	})
	require.NoError(t, buildErr)
	return binPath
}

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin []byte, args ...string) cliResult {
	t.Helper()
	return runCLIWithConfig(t, t.TempDir(), stdin, args...)
}

// runCLIWithConfig runs the CLI with configHome as XDG_CONFIG_HOME.
func runCLIWithConfig(t *testing.T, configHome string, stdin []byte, args ...string) cliResult {
	t.Helper()
	cmd := exec.Command(cliBinary(t), append(args, "--no-update-check")...)
	cmd.Env = append(os.Environ(), "XDG_CONFIG_HOME="+configHome, "NO_COLOR=1", "CI=1")
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var out, errOut bytes.Buffer
	cmd.Stdout, cmd.Stderr = &out, &errOut
	err := cmd.Run()
	res := cliResult{stdout: out.String(), stderr: errOut.String()}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.code = exitErr.ExitCode()
	} else {
		require.NoError(t, err)
	}
	return res
}

// byteCode is the status a shell sees for a negative exit code.
func byteCode(code int) int { return code & 0xff }

func writeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range map[string]string{
		"a.txt":         "alpha",
		"sub/b.txt":     "bravo",
		"sub/deep/c.md": "charlie",
	} {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func readLedger(t *testing.T, path string) map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	return doc
}

func TestCLI_UpdateThenVerify(t *testing.T) {
	root := writeTree(t)
	ledgerPath := filepath.Join(t.TempDir(), "ledger.json")

	res := runCLI(t, nil, "-r", root, "-f", ledgerPath, "-m", "update")
	require.Equal(t, exitOK, res.code, res.stderr)

	doc := readLedger(t, ledgerPath)
	assert.Equal(t, "1", doc["version"])
	entries, ok := doc["files"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, entries, 3)
	assert.Contains(t, entries, "sub/deep/c.md")

	res = runCLI(t, nil, "-f", ledgerPath, "-m", "verify", "-l", "a")
	assert.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "file successful:")
}

func TestCLI_VerifyTampered_ExitsFilesFailed(t *testing.T) {
	root := writeTree(t)
	ledgerPath := filepath.Join(t.TempDir(), "ledger.json")
	require.Equal(t, exitOK, runCLI(t, nil, "-r", root, "-f", ledgerPath, "-m", "update").code)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("tampered"), 0o644))
	res := runCLI(t, nil, "-r", root, "-f", ledgerPath, "-m", "verify")
	assert.Equal(t, exitFilesFailed, res.code)
	assert.Contains(t, res.stdout, "file unsuccessful: "+filepath.Join(root, "a.txt"))
}

func TestCLI_InvalidStoredHash_ExitsErrors(t *testing.T) {
	root := writeTree(t)
	ledgerPath := filepath.Join(t.TempDir(), "ledger.json")
	payload := `{"version":"1","settings":{"rootDir":` + quote(root) + `,"hashAlgorithm":"SHA256"},` +
		`"files":{"a.txt":{"hash":42,"lastModified":1}}}`
	require.NoError(t, os.WriteFile(ledgerPath, []byte(payload), 0o644))

	res := runCLI(t, nil, "-f", ledgerPath, "-m", "verify", "-i", "a.txt")
	assert.Equal(t, exitErrors, res.code)
	assert.Contains(t, res.stdout, "ERROR:")
}

func TestCLI_ArgumentErrors(t *testing.T) {
	root := writeTree(t)
	missing := filepath.Join(t.TempDir(), "missing.json")
	tests := []struct {
		name string
		args []string
	}{
		{"no mode", []string{"-r", root, "-f", missing}},
		{"no ledger", []string{"-r", root, "-m", "update"}},
		{"bad mode", []string{"-r", root, "-f", missing, "-m", "rebuild"}},
		{"clean with mode", []string{"-r", root, "-f", missing, "-c", "-m", "update"}},
		{"clean with check-removed", []string{"-r", root, "-f", missing, "-c", "--check-removed"}},
		{"check-removed with key", []string{"-r", root, "-f", missing, "--check-removed", "-k", "secret"}},
		{"verify missing ledger", []string{"-r", root, "-f", missing, "-m", "verify"}},
		{"ledger is a directory", []string{"-r", root, "-f", root, "-m", "verify"}},
		{"root missing", []string{"-r", filepath.Join(root, "nope"), "-f", missing, "-m", "update"}},
		{"no root anywhere", []string{"-f", missing, "-m", "update"}},
		{"unknown algorithm", []string{"-r", root, "-f", missing, "-m", "update", "--hash-alg", "CRC32"}},
		{"bad log level", []string{"-r", root, "-f", missing, "-m", "update", "-l", "x"}},
		{"unknown flag", []string{"--frobnicate"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := runCLI(t, nil, tc.args...)
			assert.Equal(t, byteCode(exitInvalid), res.code, res.stderr)
			assert.Contains(t, res.stderr, "error:")
		})
	}
	_, err := os.Stat(missing)
	assert.True(t, os.IsNotExist(err), "argument errors must not create the ledger")
}

func TestCLI_MalformedLedger_ExitsFailure(t *testing.T) {
	root := writeTree(t)
	ledgerPath := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(ledgerPath, []byte("{not json"), 0o644))

	res := runCLI(t, nil, "-r", root, "-f", ledgerPath, "-m", "update")
	assert.Equal(t, byteCode(exitFailure), res.code, res.stderr)

	b, err := os.ReadFile(ledgerPath)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(b), "a rejected ledger is left untouched")
}

func TestCLI_MalformedLedgerWithoutRoot_ReportsLedgerError(t *testing.T) {
	ledgerPath := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(ledgerPath, []byte(`{"version":2,"files":{}}`), 0o644))

	res := runCLI(t, nil, "-f", ledgerPath, "-m", "verify")
	assert.Equal(t, byteCode(exitFailure), res.code, res.stderr)
	assert.Contains(t, res.stderr, "version")
	assert.NotContains(t, res.stderr, "no root directory")
}

func TestCLI_ConfigAlgorithmDoesNotOverrideLedger(t *testing.T) {
	root := writeTree(t)
	ledgerPath := filepath.Join(t.TempDir(), "ledger.json")
	require.Equal(t, exitOK, runCLI(t, nil, "-r", root, "-f", ledgerPath, "-m", "update").code)

	configHome := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(configHome, "treehash"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configHome, "treehash", "config.yml"), []byte("algorithm: Sha256\n"), 0o644))

	res := runCLIWithConfig(t, configHome, nil, "-f", ledgerPath, "-m", "verify")
	assert.Equal(t, exitOK, res.code, res.stdout+res.stderr)

	require.NoError(t, os.WriteFile(filepath.Join(root, "new.txt"), []byte("delta"), 0o644))
	res = runCLIWithConfig(t, configHome, nil, "-f", ledgerPath, "-m", "update_new")
	require.Equal(t, exitOK, res.code, res.stderr)
	settings := readLedger(t, ledgerPath)["settings"].(map[string]any)
	assert.Equal(t, "Keccak_512", settings["hashAlgorithm"])
	entries := readLedger(t, ledgerPath)["files"].(map[string]any)
	newEntry := entries["new.txt"].(map[string]any)
	assert.Len(t, newEntry["hash"], 128, "new entries use the ledger's algorithm")

	// a fresh ledger takes the configured algorithm
	fresh := filepath.Join(t.TempDir(), "fresh.json")
	res = runCLIWithConfig(t, configHome, nil, "-r", root, "-f", fresh, "-m", "update")
	require.Equal(t, exitOK, res.code, res.stderr)
	settings = readLedger(t, fresh)["settings"].(map[string]any)
	assert.Equal(t, "Sha256", settings["hashAlgorithm"])

	// --hash-alg still overrides the ledger
	res = runCLIWithConfig(t, configHome, nil, "-f", ledgerPath, "-m", "verify", "--hash-alg", "Sha512")
	assert.Equal(t, exitFilesFailed, res.code)
}

func TestCLI_StdinStdoutPipe(t *testing.T) {
	root := writeTree(t)

	res := runCLI(t, []byte{}, "-r", root, "-f", "-", "-m", "update", "-l", "a")
	require.Equal(t, exitOK, res.code, res.stderr)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &doc), "stdout holds only the ledger")
	assert.Contains(t, res.stderr, "file successful:")

	again := runCLI(t, []byte(res.stdout), "-f", "-", "-m", "verify")
	assert.Equal(t, exitOK, again.code, again.stderr)
	assert.Empty(t, again.stdout, "verify never writes a ledger")
}

func TestCLI_LedgerInsideRootIsNotHashed(t *testing.T) {
	root := writeTree(t)
	ledgerPath := filepath.Join(root, "ledger.json")

	require.Equal(t, exitOK, runCLI(t, nil, "-r", root, "-f", ledgerPath, "-m", "update").code)
	entries := readLedger(t, ledgerPath)["files"].(map[string]any)
	assert.NotContains(t, entries, "ledger.json")

	res := runCLI(t, nil, "-f", ledgerPath, "-m", "verify")
	assert.Equal(t, exitOK, res.code, res.stderr)
}

func TestCLI_CleanAndCheckRemoved(t *testing.T) {
	root := writeTree(t)
	ledgerPath := filepath.Join(t.TempDir(), "ledger.json")
	require.Equal(t, exitOK, runCLI(t, nil, "-r", root, "-f", ledgerPath, "-m", "update").code)

	require.NoError(t, os.Remove(filepath.Join(root, "sub", "b.txt")))
	res := runCLI(t, nil, "-r", root, "-f", ledgerPath, "--check-removed")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, []string{"sub/b.txt"}, strings.Fields(res.stdout))

	res = runCLI(t, nil, "-r", root, "-f", ledgerPath, "--check-removed", "-e", "sub/")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Empty(t, strings.TrimSpace(res.stdout))

	res = runCLI(t, nil, "-r", root, "-f", ledgerPath, "-c")
	require.Equal(t, exitOK, res.code, res.stderr)
	entries := readLedger(t, ledgerPath)["files"].(map[string]any)
	assert.Len(t, entries, 2)
	assert.NotContains(t, entries, "sub/b.txt")
}

func TestCLI_ExcludeAndGlobs(t *testing.T) {
	root := writeTree(t)
	ledgerPath := filepath.Join(t.TempDir(), "ledger.json")

	res := runCLI(t, nil, "-r", root, "-f", ledgerPath, "-m", "update", "-e", "sub/deep", "--exclude-globs", "**/*.md")
	require.Equal(t, exitOK, res.code, res.stderr)
	entries := readLedger(t, ledgerPath)["files"].(map[string]any)
	assert.Len(t, entries, 2)
	assert.Contains(t, entries, "a.txt")
	assert.Contains(t, entries, "sub/b.txt")
}

func TestCLI_SummaryJSON_AuditAndMetrics(t *testing.T) {
	root := writeTree(t)
	work := t.TempDir()
	ledgerPath := filepath.Join(work, "ledger.json")
	auditPath := filepath.Join(work, "audit.jsonl")
	metricsPath := filepath.Join(work, "treehash.prom")

	res := runCLI(t, nil, "-r", root, "-f", ledgerPath, "-m", "update", "-l", "q",
		"--summary", "--log-format", "json", "--audit-log", auditPath, "--metrics-file", metricsPath)
	require.Equal(t, exitOK, res.code, res.stderr)

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &summary), res.stdout)
	assert.Equal(t, "ok", summary["status"])
	assert.EqualValues(t, 3, summary["processed"])

	b, err := os.ReadFile(auditPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"mode":"update"`)

	b, err = os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "treehash_files_processed_total")

	hist := runCLI(t, nil, "history", "--audit-log", auditPath)
	assert.Equal(t, exitOK, hist.code, hist.stderr)
	assert.Contains(t, hist.stdout, "update")
}

func TestCLI_Algorithms(t *testing.T) {
	res := runCLI(t, nil, "algorithms")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Keccak_512")
	assert.Contains(t, res.stdout, "Sha256")
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
