package engine

import (
	"os"

	"github.com/treehash/treehash/internal/digest"
	"github.com/treehash/treehash/internal/ledger"
	"github.com/treehash/treehash/internal/paths"
)

// Messages reported through the Sink for per-file conditions.
const (
	MsgNotRegularFile = "file does not exist or is not a regular file"
	MsgOutsideRoot    = "file is outside of root dir"
	MsgNoSavedHash    = "no saved hash for file"
	MsgInvalidHash    = "saved hash has an invalid type"
	MsgNoModTime      = "saved entry has no lastModified value"
	MsgHashFailed     = "unable to compute hash"
)

// processor applies one run mode to candidates, mutating files in place.
type processor struct {
	mode     Mode
	settings ledger.Settings
	key      []byte
	files    map[string]ledger.Entry
	sink     Sink
	digest   *digest.Computer
}

func (p *processor) process(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		p.sink.Warning(MsgNotRegularFile, path)
		p.sink.FileProcessed(path, false)
		return
	}
	rel, outside := paths.Relativize(path, p.settings.RootDir)
	if outside {
		p.sink.Warning(MsgOutsideRoot, path)
	}
	mtime := info.ModTime().Unix()

	switch p.mode {
	case ModeVerify:
		p.verify(path, rel)
	case ModeUpdate:
		p.update(path, rel, mtime)
	case ModeUpdateNew:
		if _, known := p.files[rel]; known {
			return
		}
		p.update(path, rel, mtime)
	case ModeUpdateModified:
		p.updateModified(path, rel, mtime)
	}
}

func (p *processor) verify(path, rel string) {
	sum, ok := p.hash(path)
	if !ok {
		p.sink.FileProcessed(path, false)
		return
	}
	e, known := p.files[rel]
	if !known {
		p.sink.Warning(MsgNoSavedHash, path)
		p.sink.FileProcessed(path, false)
		return
	}
	if !e.HashValid() {
		p.sink.Error(MsgInvalidHash, path)
		p.sink.FileProcessed(path, false)
		return
	}
	p.sink.FileProcessed(path, sum == e.Hash)
}

func (p *processor) update(path, rel string, mtime int64) {
	sum, ok := p.hash(path)
	if !ok {
		p.sink.FileProcessed(path, false)
		return
	}
	p.files[rel] = ledger.NewEntry(sum, mtime)
	p.sink.FileProcessed(path, true)
}

func (p *processor) updateModified(path, rel string, mtime int64) {
	e, known := p.files[rel]
	if !known {
		p.sink.Warning(MsgNoSavedHash, path)
		p.sink.FileProcessed(path, false)
		return
	}
	if !e.HasModTime() {
		p.sink.Error(MsgNoModTime, path)
		p.sink.FileProcessed(path, false)
		return
	}
	if mtime > e.LastModified {
		p.update(path, rel, mtime)
	}
}

func (p *processor) hash(path string) (string, bool) {
	sum, err := p.digest.Sum(path, p.settings.Algorithm(), p.key)
	if err != nil {
		p.sink.Error(MsgHashFailed+": "+err.Error(), path)
		return "", false
	}
	return sum, true
}
