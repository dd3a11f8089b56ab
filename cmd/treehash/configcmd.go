package treehash

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/treehash/treehash/internal/config"
	"github.com/treehash/treehash/internal/digest"
	"github.com/treehash/treehash/internal/files"
)

var (
	cfgOutput        string
	cfgAlgorithm     string
	cfgExclude       []string
	cfgExcludeGlobs  string
	cfgLogLevel      string
	cfgNoLinkedDirs  bool
	cfgNoLinkedFiles bool
	cfgTrackedOnly   bool
	cfgAuditLog      string
	cfgGitignore     bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .treehash.yml with the given defaults",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", ".treehash.yml", "output file path")
	initCmd.Flags().StringVar(&cfgAlgorithm, "algorithm", string(digest.Default), "digest algorithm")
	initCmd.Flags().StringArrayVar(&cfgExclude, "exclude", nil, "path to exclude; repeatable")
	initCmd.Flags().StringVar(&cfgExcludeGlobs, "exclude-globs", "", "comma-separated globs to exclude")
	initCmd.Flags().StringVar(&cfgLogLevel, "loglevel", "w", "default log level: q | e | w | a")
	initCmd.Flags().BoolVar(&cfgNoLinkedDirs, "no-linked-dirs", false, "do not descend into symlinked directories by default")
	initCmd.Flags().BoolVar(&cfgNoLinkedFiles, "no-linked-files", false, "skip symlinked files by default")
	initCmd.Flags().BoolVar(&cfgTrackedOnly, "tracked-only", false, "only consider git-tracked files by default")
	initCmd.Flags().StringVar(&cfgAuditLog, "audit-log", "", "audit log file")
	initCmd.Flags().BoolVar(&cfgGitignore, "gitignore", false, "add the audit log to .gitignore next to the config")
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	fc := config.FileConfig{
		Algorithm:     strPtr(cfgAlgorithm),
		Exclude:       cfgExclude,
		ExcludeGlobs:  optStrPtr(cfgExcludeGlobs),
		LogLevel:      strPtr(cfgLogLevel),
		NoLinkedDirs:  boolPtr(cfgNoLinkedDirs),
		NoLinkedFiles: boolPtr(cfgNoLinkedFiles),
		TrackedOnly:   boolPtr(cfgTrackedOnly),
		AuditLog:      optStrPtr(cfgAuditLog),
	}
	if err := fc.Validate(); err != nil {
		return &exitError{code: exitInvalid, err: err}
	}

	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfgOutput, b, 0o644); err != nil {
		return err
	}
	fmt.Println("Wrote", cfgOutput)

	if cfgGitignore && cfgAuditLog != "" {
		dir := filepath.Dir(cfgOutput)
		if patterns := files.RunArtifacts(dir, cfgAuditLog); len(patterns) > 0 {
			if err := files.AppendIgnore(dir, patterns...); err != nil {
				return err
			}
			fmt.Println("Updated", filepath.Join(dir, ".gitignore"))
		}
	}
	return nil
}
