// Package logutil builds the zap loggers used by the marquee binaries.
package logutil

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/matt-g-everett/marquee/config"
)

// Discard is a logger that ignores everything.
var Discard = zap.NewNop().Sugar()

// New returns a logger named name. With cfg.File set it writes JSON to a
// rotated file, otherwise console output to stderr, coloured on a terminal.
func New(name string, cfg config.Log) (*zap.SugaredLogger, error) {
	level := zap.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, errors.Wrapf(err, "log level %q", cfg.Level)
		}
	}

	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder

	var core zapcore.Core
	if cfg.File != "" {
		sink := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		core = zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(sink), level)
	} else {
		if isatty.IsTerminal(os.Stderr.Fd()) {
			enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			enc.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		core = zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), level)
	}

	return zap.New(core).Named(name).Sugar(), nil
}
