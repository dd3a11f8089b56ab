package report

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewJSONLogger returns a production-encoded JSON logger writing to w and
// filtered by level. LevelQuiet discards everything.
func NewJSONLogger(w io.Writer, level Level) *zap.Logger {
	var min zapcore.Level
	switch level {
	case LevelQuiet:
		return zap.NewNop()
	case LevelErrors:
		min = zapcore.ErrorLevel
	case LevelWarnings:
		min = zapcore.WarnLevel
	default:
		min = zapcore.InfoLevel
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), min))
}

// ZapReporter emits one structured record per run event. Unsuccessful files
// are logged at error level so they survive the "e" filter, as in text
// output. It implements engine.Sink.
type ZapReporter struct {
	Log *zap.Logger
}

func (z ZapReporter) FileProcessed(path string, ok bool) {
	if ok {
		z.Log.Info("file successful", zap.String("path", path), zap.Bool("ok", true))
		return
	}
	z.Log.Error("file unsuccessful", zap.String("path", path), zap.Bool("ok", false))
}

func (z ZapReporter) Warning(msg, path string) {
	z.Log.Warn(msg, zap.String("path", path))
}

func (z ZapReporter) Error(msg, path string) {
	z.Log.Error(msg, zap.String("path", path))
}
