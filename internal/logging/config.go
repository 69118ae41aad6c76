package logging

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/danmuck/esphost/internal/logs"
)

const (
	EnvLogLevel     = "ESPHOST_LOG_LEVEL"
	EnvLogTimestamp = "ESPHOST_LOG_TIMESTAMP"
	EnvLogNoColor   = "ESPHOST_LOG_NOCOLOR"
	EnvLogBypass    = "ESPHOST_LOG_BYPASS"
	// EnvLogTrace is a comma list of subsystems, e.g. "hci,resync".
	EnvLogTrace = "ESPHOST_LOG_TRACE"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
	// ProfileWire dumps every frame at trace level with microsecond stamps.
	ProfileWire
)

var configureOnce sync.Once

func ConfigureRuntime() {
	Configure(ProfileRuntime)
}

func ConfigureTests() {
	Configure(ProfileTest)
}

func ConfigureWire() {
	Configure(ProfileWire)
}

func Configure(profile Profile) {
	configureOnce.Do(func() {
		cfg := defaultConfig(profile)
		applyEnvOverrides(&cfg)
		logs.Configure(cfg)
	})
}

func defaultConfig(profile Profile) logs.Config {
	cfg := logs.DefaultConfig()
	switch profile {
	case ProfileTest:
		cfg.Level = logs.DebugLevel
		cfg.Timestamp = false
	case ProfileWire:
		cfg.Level = logs.TraceLevel
		cfg.Timestamp = true
		cfg.TimeFormat = logs.WireTimeFormat
	default:
		cfg.Level = logs.InfoLevel
		cfg.Timestamp = true
	}
	return cfg
}

func applyEnvOverrides(cfg *logs.Config) {
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogBypass)); ok {
		cfg.Bypass = v
	}
	if subs := ParseSubsystems(os.Getenv(EnvLogTrace)); len(subs) > 0 {
		cfg.Trace = subs
	}
}

// ParseSubsystems reads a comma list of trace subsystems. Unknown names are
// dropped; "all" or an empty list selects none, which traces everything.
func ParseSubsystems(raw string) []logs.Subsystem {
	var out []logs.Subsystem
	for _, part := range strings.Split(raw, ",") {
		name := logs.Subsystem(strings.ToLower(strings.TrimSpace(part)))
		if name == "all" {
			return nil
		}
		for _, sub := range logs.Subsystems {
			if sub == name {
				out = append(out, sub)
				break
			}
		}
	}
	return out
}

// ParseLevel maps a level name to a logs.Level. The bool is false for
// empty or unrecognized input.
func ParseLevel(raw string) (logs.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return logs.InfoLevel, false
	case "trace", "wire":
		return logs.TraceLevel, true
	case "debug":
		return logs.DebugLevel, true
	case "info":
		return logs.InfoLevel, true
	case "warn", "warning":
		return logs.WarnLevel, true
	case "error":
		return logs.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return logs.Disabled, true
	default:
		return logs.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
