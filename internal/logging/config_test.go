package logging

import (
	"testing"

	"github.com/danmuck/esphost/internal/logs"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		raw  string
		want logs.Level
		ok   bool
	}{
		{"", logs.InfoLevel, false},
		{"TRACE", logs.TraceLevel, true},
		{"wire", logs.TraceLevel, true},
		{" debug ", logs.DebugLevel, true},
		{"warning", logs.WarnLevel, true},
		{"off", logs.Disabled, true},
		{"loud", logs.InfoLevel, false},
	}
	for _, tc := range cases {
		got, ok := ParseLevel(tc.raw)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseLevel(%q)=(%v,%v) want (%v,%v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestEnvOverridesApply(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogTimestamp, "true")
	t.Setenv(EnvLogNoColor, "1")
	t.Setenv(EnvLogBypass, "false")

	cfg := defaultConfig(ProfileTest)
	if cfg.Level != logs.DebugLevel || cfg.Timestamp {
		t.Fatalf("unexpected test profile defaults: %+v", cfg)
	}
	applyEnvOverrides(&cfg)
	if cfg.Level != logs.ErrorLevel {
		t.Fatalf("level override not applied: %v", cfg.Level)
	}
	if !cfg.Timestamp || !cfg.NoColor || cfg.Bypass {
		t.Fatalf("bool overrides not applied: %+v", cfg)
	}
}

func TestEnvOverridesIgnoreGarbage(t *testing.T) {
	t.Setenv(EnvLogLevel, "shouting")
	t.Setenv(EnvLogTimestamp, "maybe")

	cfg := defaultConfig(ProfileRuntime)
	applyEnvOverrides(&cfg)
	if cfg.Level != logs.InfoLevel || !cfg.Timestamp {
		t.Fatalf("garbage overrides should be ignored: %+v", cfg)
	}
}

func TestWireProfile(t *testing.T) {
	cfg := defaultConfig(ProfileWire)
	if cfg.Level != logs.TraceLevel || !cfg.Timestamp || cfg.TimeFormat != logs.WireTimeFormat {
		t.Fatalf("unexpected wire profile: %+v", cfg)
	}
}

func TestParseSubsystems(t *testing.T) {
	got := ParseSubsystems(" HCI, resync ,bogus")
	if len(got) != 2 || got[0] != logs.SubHCI || got[1] != logs.SubResync {
		t.Fatalf("unexpected subsystems %v", got)
	}
	if ParseSubsystems("hci,all") != nil {
		t.Fatalf("all should clear the filter")
	}
	if ParseSubsystems("") != nil {
		t.Fatalf("empty input should trace everything")
	}
}

func TestTraceEnvSelectsSubsystems(t *testing.T) {
	t.Setenv(EnvLogTrace, "frame")
	cfg := defaultConfig(ProfileWire)
	applyEnvOverrides(&cfg)
	if len(cfg.Trace) != 1 || cfg.Trace[0] != logs.SubFrame {
		t.Fatalf("trace override not applied: %v", cfg.Trace)
	}
}
