// Package logging writes component-tagged log lines to a size-rotated file,
// optionally mirrored to the console.
//
//	2026-10-18T09:12:03+02:00 [INFO] [reorganize] Moved photo | team=Red | photo=a.jpg
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Nomadcxx/teamsort/internal/paths"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError

	levelOff
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel is lenient: anything unrecognised means info.
func ParseLevel(s string) Level {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "WARNING" {
		return LevelWarn
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i)
		}
	}
	return LevelInfo
}

type Field struct {
	Key   string
	Value any
}

func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Config mirrors the [logging] section. File defaults to the state
// directory's logs/teamsort.log and may start with ~.
type Config struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`

	// Quiet keeps lines off the console; the terminal form owns the screen.
	Quiet bool `mapstructure:"-"`
	// Console receives a copy of every line unless Quiet. Nil means stderr.
	Console io.Writer `mapstructure:"-"`
}

func DefaultConfig() Config {
	return Config{Level: "info", MaxSizeMB: 10, MaxBackups: 5}
}

type Logger struct {
	level atomic.Int32

	mu      sync.Mutex
	file    *rotatingFile
	console io.Writer
}

func New(cfg Config) (*Logger, error) {
	path, err := resolveFile(cfg.File)
	if err != nil {
		return nil, err
	}

	def := DefaultConfig()
	maxSize, maxBackups := cfg.MaxSizeMB, cfg.MaxBackups
	if maxSize <= 0 {
		maxSize = def.MaxSizeMB
	}
	if maxBackups <= 0 {
		maxBackups = def.MaxBackups
	}

	file, err := openRotating(path, int64(maxSize)<<20, maxBackups)
	if err != nil {
		return nil, err
	}

	l := &Logger{file: file}
	l.level.Store(int32(ParseLevel(cfg.Level)))
	if !cfg.Quiet {
		l.console = cfg.Console
		if l.console == nil {
			l.console = os.Stderr
		}
	}
	return l, nil
}

func resolveFile(file string) (string, error) {
	if file == "" {
		return paths.LogPath()
	}
	if file == "~" || strings.HasPrefix(file, "~/") {
		home, err := paths.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding log path %s: %w", file, err)
		}
		return filepath.Join(home, file[1:]), nil
	}
	return file, nil
}

// Nop discards everything. Library code uses it when no logger is given.
func Nop() *Logger {
	l := &Logger{}
	l.level.Store(int32(levelOff))
	return l
}

func (l *Logger) Debug(component, msg string, fields ...Field) {
	l.log(LevelDebug, component, msg, nil, fields)
}

func (l *Logger) Info(component, msg string, fields ...Field) {
	l.log(LevelInfo, component, msg, nil, fields)
}

func (l *Logger) Warn(component, msg string, fields ...Field) {
	l.log(LevelWarn, component, msg, nil, fields)
}

func (l *Logger) Error(component, msg string, err error, fields ...Field) {
	l.log(LevelError, component, msg, err, fields)
}

func (l *Logger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

// FilePath is empty for a Nop logger.
func (l *Logger) FilePath() string {
	if l.file == nil {
		return ""
	}
	return l.file.path
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) log(level Level, component, msg string, err error, fields []Field) {
	if int32(level) < l.level.Load() {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] [%s] %s", time.Now().Format(time.RFC3339), level, component, msg)
	if err != nil {
		fmt.Fprintf(&sb, " | error=%v", err)
	}
	for _, f := range fields {
		fmt.Fprintf(&sb, " | %s=%v", f.Key, f.Value)
	}
	sb.WriteByte('\n')
	line := []byte(sb.String())

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		if _, werr := l.file.Write(line); werr != nil {
			fmt.Fprintf(os.Stderr, "teamsort: log write failed: %v\n", werr)
		}
	}
	if l.console != nil {
		l.console.Write(line)
	}
}
