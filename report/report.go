// Package report is the leveled message sink for an export session.
// Warnings never abort a run; an ExportError always does.
package report

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Reporter struct {
	log      *zap.SugaredLogger
	warnings int
}

func New(log *zap.Logger) *Reporter {
	return &Reporter{log: log.Sugar()}
}

// NewNop returns a reporter that counts warnings but writes nowhere.
func NewNop() *Reporter {
	return New(zap.NewNop())
}

func (r *Reporter) Infof(format string, a ...interface{}) {
	r.log.Infof(format, a...)
}

func (r *Reporter) Debugf(format string, a ...interface{}) {
	r.log.Debugf(format, a...)
}

func (r *Reporter) Warnf(format string, a ...interface{}) {
	r.warnings++
	r.log.Warnf(format, a...)
}

func (r *Reporter) Errorf(format string, a ...interface{}) {
	r.log.Errorf(format, a...)
}

// Warnings returns how many warnings were reported so far.
func (r *Reporter) Warnings() int {
	return r.warnings
}

// FileConfig controls the optional rotated log file.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  25,
		MaxBackups: 3,
		MaxAgeDays: 7,
	}
}

// NewLogger builds the zap logger used by the CLI: console output always,
// plus a rotated file when fileCfg.Path is set.
func NewLogger(level string, fileCfg FileConfig) *zap.Logger {
	lvl := parseLevel(level)

	encCfg := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: " ",
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stdout), lvl),
	}

	if fileCfg.Path != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   fileCfg.Path,
			MaxSize:    fileCfg.MaxSizeMB,
			MaxBackups: fileCfg.MaxBackups,
			MaxAge:     fileCfg.MaxAgeDays,
			LocalTime:  true,
		}
		fileEncCfg := encCfg
		fileEncCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(fileEncCfg), zapcore.AddSync(fileWriter), lvl))
	}

	return zap.New(zapcore.NewTee(cores...))
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
