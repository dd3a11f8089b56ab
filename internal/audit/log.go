package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/treehash/treehash/internal/engine"
)

// maxFailedFiles caps the failed paths stored per record.
const maxFailedFiles = 10

// RunRecord is one line of the audit log.
type RunRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	RunID       string    `json:"run_id"`
	Mode        string    `json:"mode"`
	Root        string    `json:"root"`
	Ledger      string    `json:"ledger"`
	Algorithm   string    `json:"algorithm"`
	Keyed       bool      `json:"keyed"`
	Processed   int       `json:"processed"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
	Warnings    int       `json:"warnings"`
	Errors      int       `json:"errors"`
	Entries     int       `json:"entries"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Status      string    `json:"status"`
	Duration    string    `json:"duration"`
	FailedFiles []string  `json:"failed_files,omitempty"`
}

// AuditLog appends run records to a JSON-lines file.
type AuditLog struct {
	logPath string
}

func NewAuditLog(path string) *AuditLog {
	return &AuditLog{logPath: path}
}

// Path returns the log file location.
func (a *AuditLog) Path() string { return a.logPath }

// LoadHistory returns the records newest first. Lines that do not decode
// are skipped.
func (a *AuditLog) LoadHistory() ([]RunRecord, error) {
	f, err := os.Open(a.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []RunRecord
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var record RunRecord
		if err := decoder.Decode(&record); err != nil {
			if _, ok := err.(*json.SyntaxError); ok {
				break
			}
			continue
		}
		records = append(records, record)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// LogRun appends record, assigning a run ID when it has none.
func (a *AuditLog) LogRun(record RunRecord) error {
	if record.RunID == "" {
		record.RunID = uuid.NewString()
	}

	// owner-only: records name the files that failed
	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// DeleteRecord removes the record at index, counted newest first as
// returned by LoadHistory.
func (a *AuditLog) DeleteRecord(index int) error {
	records, err := a.LoadHistory()
	if err != nil {
		return err
	}

	if index < 0 || index >= len(records) {
		return fmt.Errorf("invalid index: %d", index)
	}

	records = append(records[:index], records[index+1:]...)

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to rewrite audit log: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("failed to write audit record: %w", err)
		}
	}
	return nil
}

// LastFingerprint returns the fingerprint recorded by the newest updating
// run against ledger, or "" when there is none.
func (a *AuditLog) LastFingerprint(ledger string) string {
	records, err := a.LoadHistory()
	if err != nil {
		return ""
	}
	for _, r := range records {
		if r.Ledger == ledger && r.Fingerprint != "" {
			return r.Fingerprint
		}
	}
	return ""
}

// CreateRunRecord builds a record from a finished run. failed lists the
// unsuccessful paths in event order; only the first few are kept.
func CreateRunRecord(res engine.Result, ledger string, keyed bool, failed []string) RunRecord {
	if len(failed) > maxFailedFiles {
		failed = failed[:maxFailedFiles]
	}
	return RunRecord{
		Timestamp:   time.Now().UTC(),
		RunID:       uuid.NewString(),
		Mode:        res.Mode.String(),
		Root:        res.Settings.RootDir,
		Ledger:      ledger,
		Algorithm:   res.Settings.HashAlgorithm,
		Keyed:       keyed,
		Processed:   res.Processed,
		Succeeded:   res.Succeeded,
		Failed:      res.Failed,
		Warnings:    res.Warnings,
		Errors:      res.Errors,
		Entries:     res.Entries,
		Fingerprint: res.Fingerprint,
		Status:      res.Status().String(),
		Duration:    res.Duration.String(),
		FailedFiles: append([]string(nil), failed...),
	}
}
