package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/esphost/internal/config"
	"github.com/danmuck/esphost/internal/protocol/session"
)

// cliConfig is what the commands run with after defaults and file overrides.
type cliConfig struct {
	Session     session.Config
	Device      string
	MetricsAddr string
}

func defaultCLIConfig() cliConfig {
	return cliConfig{Session: session.DefaultConfig()}
}

// loadCLIConfig reads the --config file into the shared link schema and
// overlays it with config.SessionConfig, so it accepts exactly what
// `espctl config validate` accepts.
func loadCLIConfig(path string) (cliConfig, error) {
	var raw config.LinkConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return cliConfig{}, fmt.Errorf("load espctl config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cliConfig{}, fmt.Errorf("load espctl config: unknown key %s", undecoded[0])
	}

	link, err := config.NormalizeLinkConfig(raw)
	if err != nil {
		return cliConfig{}, fmt.Errorf("espctl config %s: %w", path, err)
	}
	sc, err := config.SessionConfig(link)
	if err != nil {
		return cliConfig{}, fmt.Errorf("espctl config %s: %w", path, err)
	}

	return cliConfig{Session: sc, Device: link.Link.Device, MetricsAddr: link.Metrics.Addr}, nil
}
