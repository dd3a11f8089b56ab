package treehash

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/treehash/treehash/internal/engine"
	"github.com/treehash/treehash/internal/files"
)

const uploadSchemaVersion = "1"

type uploadRunReport struct {
	Mode        string   `json:"mode"`
	Root        string   `json:"root"`
	Algorithm   string   `json:"algorithm"`
	Processed   int      `json:"processed"`
	Succeeded   int      `json:"succeeded"`
	Failed      int      `json:"failed"`
	Warnings    int      `json:"warnings"`
	Errors      int      `json:"errors"`
	Entries     int      `json:"entries"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Status      string   `json:"status"`
	DurationMS  int64    `json:"duration_ms"`
	FailedFiles []string `json:"failed_files"`
}

type uploadEnvelope struct {
	Tool    string          `json:"tool"`
	Version string          `json:"version"`
	Schema  string          `json:"schema_version"`
	Repo    string          `json:"repo,omitempty"`
	Commit  string          `json:"commit,omitempty"`
	Branch  string          `json:"branch,omitempty"`
	Run     uploadRunReport `json:"run"`
}

func newUploadEnvelope(rootPath string, res engine.Result, failed []string) uploadEnvelope {
	if failed == nil {
		failed = []string{}
	}
	env := uploadEnvelope{
		Tool:    "treehash",
		Version: version,
		Schema:  uploadSchemaVersion,
		Run: uploadRunReport{
			Mode:        res.Mode.String(),
			Root:        res.Settings.RootDir,
			Algorithm:   res.Settings.HashAlgorithm,
			Processed:   res.Processed,
			Succeeded:   res.Succeeded,
			Failed:      res.Failed,
			Warnings:    res.Warnings,
			Errors:      res.Errors,
			Entries:     res.Entries,
			Fingerprint: res.Fingerprint,
			Status:      res.Status().String(),
			DurationMS:  res.Duration.Milliseconds(),
			FailedFiles: failed,
		},
	}
	// Best-effort git metadata
	env.Repo, env.Commit, env.Branch = files.RepoMetadata(rootPath)
	return env
}

// uploadRun posts the run report to url.
func uploadRun(rootPath, url, token string, res engine.Result, failed []string) error {
	body, err := json.Marshal(newUploadEnvelope(rootPath, res, failed))
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	httpClient := &http.Client{Timeout: 10 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload status %d", resp.StatusCode)
	}
	return nil
}
