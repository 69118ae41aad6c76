package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/danmuck/esphost/internal/protocol"
	"github.com/danmuck/esphost/internal/protocol/hci"
	"github.com/danmuck/esphost/internal/protocol/session"
	"github.com/pelletier/go-toml/v2"
)

// LinkConfig is the on-disk shape of a link profile.
type LinkConfig struct {
	Link    LinkSection    `toml:"link"`
	HCI     HCISection     `toml:"hci"`
	RPC     RPCSection     `toml:"rpc"`
	Metrics MetricsSection `toml:"metrics"`
}

type LinkSection struct {
	Interface      string `toml:"interface"`
	Device         string `toml:"device"`
	BufferSize     int    `toml:"buffer_size"`
	VerifyChecksum *bool  `toml:"verify_checksum"`
	SerialTLV      *bool  `toml:"serial_tlv"`
	ResyncWindow   int    `toml:"resync_window"`
}

type HCISection struct {
	MaxEvents  int `toml:"max_events"`
	MaxReports int `toml:"max_reports"`
	MaxAdvData int `toml:"max_adv_data"`
}

type RPCSection struct {
	MaxApRecords int `toml:"max_ap_records"`
}

type MetricsSection struct {
	Addr string `toml:"addr"`
}

func LoadLinkConfig(path string) (LinkConfig, error) {
	var cfg LinkConfig
	if err := loadToml(path, &cfg); err != nil {
		return LinkConfig{}, err
	}
	return NormalizeLinkConfig(cfg)
}

// NormalizeLinkConfig trims string fields, defaults the interface to uart and
// validates the result. Both TOML loaders finish here.
func NormalizeLinkConfig(cfg LinkConfig) (LinkConfig, error) {
	cfg.Link.Interface = strings.TrimSpace(cfg.Link.Interface)
	if cfg.Link.Interface == "" {
		cfg.Link.Interface = "uart"
	}
	cfg.Link.Device = strings.TrimSpace(cfg.Link.Device)
	cfg.Metrics.Addr = strings.TrimSpace(cfg.Metrics.Addr)
	if err := ValidateLinkConfig(cfg); err != nil {
		return LinkConfig{}, err
	}
	return cfg, nil
}

// ParseLinkConfig decodes a profile held in memory. Unknown keys are rejected.
func ParseLinkConfig(data []byte) (LinkConfig, error) {
	var cfg LinkConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return LinkConfig{}, fmt.Errorf("config parse failed: %w", err)
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

// SessionConfig overlays the set fields of cfg on session.DefaultConfig.
func SessionConfig(cfg LinkConfig) (session.Config, error) {
	out := session.DefaultConfig()
	if v := strings.TrimSpace(cfg.Link.Interface); v != "" {
		t, err := protocol.ParseTransport(v)
		if err != nil {
			return session.Config{}, err
		}
		out.Transport = t
		if out.BufferSize > t.MTU() {
			out.BufferSize = t.MTU()
		}
	}
	if cfg.Link.BufferSize != 0 {
		out.BufferSize = cfg.Link.BufferSize
	}
	if cfg.Link.VerifyChecksum != nil {
		out.VerifyChecksum = *cfg.Link.VerifyChecksum
	}
	if cfg.Link.SerialTLV != nil {
		out.SerialTLV = *cfg.Link.SerialTLV
	}
	if cfg.Link.ResyncWindow != 0 {
		out.ResyncWindow = cfg.Link.ResyncWindow
	}
	out.HCI = hciLimits(cfg.HCI, out.HCI)
	if cfg.RPC.MaxApRecords != 0 {
		out.MaxApRecords = cfg.RPC.MaxApRecords
	}
	if err := out.Validate(); err != nil {
		return session.Config{}, err
	}
	return out, nil
}

func hciLimits(s HCISection, base hci.Limits) hci.Limits {
	if s.MaxEvents != 0 {
		base.MaxEvents = s.MaxEvents
	}
	if s.MaxReports != 0 {
		base.MaxReports = s.MaxReports
	}
	if s.MaxAdvData != 0 {
		base.MaxAdvData = s.MaxAdvData
	}
	return base
}

func ValidateLinkConfig(cfg LinkConfig) error {
	if _, err := protocol.ParseTransport(cfg.Link.Interface); err != nil {
		return fmt.Errorf("link config interface invalid: %w", err)
	}
	if cfg.Link.BufferSize < 0 || cfg.Link.ResyncWindow < 0 {
		return fmt.Errorf("link config sizes must not be negative")
	}
	if cfg.HCI.MaxEvents < 0 || cfg.HCI.MaxReports < 0 || cfg.HCI.MaxAdvData < 0 || cfg.RPC.MaxApRecords < 0 {
		return fmt.Errorf("link config limits must not be negative")
	}
	if _, err := SessionConfig(cfg); err != nil {
		return fmt.Errorf("link config invalid: %w", err)
	}
	return nil
}
