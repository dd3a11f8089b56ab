package core

import (
	"github.com/treehash/treehash/internal/engine"
	"github.com/treehash/treehash/internal/files"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type (
	Config            = engine.Config
	MaintenanceConfig = engine.MaintenanceConfig
	Result            = engine.Result
	Status            = engine.Status
	Mode              = engine.Mode
	Sink              = engine.Sink
	SinkFuncs         = engine.SinkFuncs
	Event             = engine.Event
	Recorder          = engine.Recorder
	Error             = engine.Error
	SelectOptions     = files.Options
)

const (
	ModeVerify         = engine.ModeVerify
	ModeUpdate         = engine.ModeUpdate
	ModeUpdateNew      = engine.ModeUpdateNew
	ModeUpdateModified = engine.ModeUpdateModified
)

// Run processes cfg.Files against the ledger in cfg.Source.
func Run(cfg Config) (Result, error) { return engine.Run(cfg) }

// Prune drops ledger entries whose files are not in cfg.Paths.
func Prune(cfg MaintenanceConfig) (engine.PruneResult, error) { return engine.Prune(cfg) }

// FindRemoved lists ledger keys whose files are not in cfg.Paths.
func FindRemoved(cfg MaintenanceConfig) ([]string, error) { return engine.FindRemoved(cfg) }

// Select builds a candidate list the way the treehash command does.
func Select(opts SelectOptions) ([]string, error) { return files.Select(opts) }
