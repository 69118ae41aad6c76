// Package logs is the process logging facade over zerolog.
//
// Call sites use printf-style helpers (Infof, Warnf, Errf, Debugf, Tracef,
// Logf) so codec packages never hold a logger value.
package logs

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

type Level = zerolog.Level

const (
	TraceLevel = zerolog.TraceLevel
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	Disabled   = zerolog.Disabled
)

// WireTimeFormat resolves frame-to-frame gaps on a fast link.
const WireTimeFormat = "15:04:05.000000"

// Subsystem names a link layer whose wire trace can be enabled on its own.
type Subsystem string

const (
	SubFrame   Subsystem = "frame"
	SubResync  Subsystem = "resync"
	SubRPC     Subsystem = "rpc"
	SubHCI     Subsystem = "hci"
	SubSession Subsystem = "session"
)

// Subsystems lists every traceable layer.
var Subsystems = []Subsystem{SubFrame, SubResync, SubRPC, SubHCI, SubSession}

// Config selects the console writer and minimum level.
type Config struct {
	Level      Level
	Timestamp  bool
	TimeFormat string
	NoColor    bool
	// Bypass routes output to plain JSON lines instead of the console writer.
	Bypass bool
	Output io.Writer
	// Trace limits Wiref output to these subsystems. Empty traces all of them.
	Trace []Subsystem
}

func DefaultConfig() Config {
	return Config{
		Level:     InfoLevel,
		Timestamp: true,
		NoColor:   !isatty.IsTerminal(os.Stderr.Fd()),
	}
}

var (
	mu     sync.RWMutex
	logger = zerolog.New(os.Stderr).Level(InfoLevel)
	traced map[Subsystem]bool
)

// Configure replaces the process logger.
func Configure(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = colorable.NewColorableStderr()
	}
	var w io.Writer = out
	if !cfg.Bypass {
		format := cfg.TimeFormat
		if format == "" {
			format = time.RFC3339
		}
		cw := zerolog.ConsoleWriter{Out: out, NoColor: cfg.NoColor, TimeFormat: format}
		if !cfg.Timestamp {
			cw.PartsExclude = []string{zerolog.TimestampFieldName}
		}
		w = cw
	}
	ctx := zerolog.New(w).Level(cfg.Level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	var subs map[Subsystem]bool
	if len(cfg.Trace) > 0 {
		subs = make(map[Subsystem]bool, len(cfg.Trace))
		for _, sub := range cfg.Trace {
			subs[sub] = true
		}
	}
	mu.Lock()
	logger = ctx.Logger()
	traced = subs
	mu.Unlock()
}

// Tracing reports whether Wiref output for sub would be written.
func Tracing(sub Subsystem) bool {
	mu.RLock()
	defer mu.RUnlock()
	return logger.GetLevel() <= TraceLevel && (traced == nil || traced[sub])
}

// Logger returns the current process logger for structured call sites.
func Logger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

func Tracef(format string, args ...any) { emit(TraceLevel, format, args...) }
func Debugf(format string, args ...any) { emit(DebugLevel, format, args...) }
func Infof(format string, args ...any)  { emit(InfoLevel, format, args...) }
func Warnf(format string, args ...any)  { emit(WarnLevel, format, args...) }
func Errf(format string, args ...any)   { emit(ErrorLevel, format, args...) }

// Logf writes regardless of the configured level.
func Logf(format string, args ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Log().Msg(fmt.Sprintf(format, args...))
}

// Wiref writes a trace line tagged with sub when that subsystem is traced.
func Wiref(sub Subsystem, format string, args ...any) {
	mu.RLock()
	l := logger
	on := traced == nil || traced[sub]
	mu.RUnlock()
	if !on {
		return
	}
	if e := l.Trace(); e != nil {
		e.Str("sub", string(sub)).Msg(fmt.Sprintf(format, args...))
	}
}

func emit(level Level, format string, args ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if e := l.WithLevel(level); e != nil {
		e.Msg(fmt.Sprintf(format, args...))
	}
}
