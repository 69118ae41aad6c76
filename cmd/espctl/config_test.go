package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/esphost/internal/config"
	"github.com/danmuck/esphost/internal/protocol"
	"github.com/danmuck/esphost/internal/protocol/hci"
	"github.com/danmuck/esphost/internal/testutil/testlog"
)

func TestLoadCLIConfigDefaultsAndOverrides(t *testing.T) {
	testlog.Start(t)
	cfg, err := loadCLIConfig("ex.config.toml")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	sc := cfg.Session
	if sc.Transport != protocol.TransportSPI {
		t.Fatalf("unexpected transport: %s", sc.Transport)
	}
	if sc.BufferSize != protocol.MTUSPI {
		t.Fatalf("unexpected buffer size: %d", sc.BufferSize)
	}
	if !sc.VerifyChecksum {
		t.Fatalf("expected checksum verification")
	}
	if sc.SerialTLV {
		t.Fatalf("expected serial tlv disabled")
	}
	if sc.ResyncWindow != 3 {
		t.Fatalf("unexpected resync window: %d", sc.ResyncWindow)
	}
	if sc.HCI.MaxReports != 2 || sc.HCI.MaxEvents != hci.DefaultLimits().MaxEvents {
		t.Fatalf("unexpected hci limits: %+v", sc.HCI)
	}
	if sc.MaxApRecords != 16 {
		t.Fatalf("unexpected max ap records: %d", sc.MaxApRecords)
	}
	if cfg.Device != "/dev/spidev0.0" {
		t.Fatalf("unexpected device: %q", cfg.Device)
	}
	if cfg.MetricsAddr != "127.0.0.1:9464" {
		t.Fatalf("unexpected metrics addr: %q", cfg.MetricsAddr)
	}
}

func TestLoadCLIConfigSDIOClampsBuffer(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "sdio.toml")
	if err := os.WriteFile(path, []byte("[link]\ninterface = \"sdio\"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := loadCLIConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Session.BufferSize != protocol.MTUSDIO {
		t.Fatalf("unexpected buffer size: %d", cfg.Session.BufferSize)
	}
	if !cfg.Session.SerialTLV {
		t.Fatalf("serial tlv default lost")
	}
}

func TestCLIConfigMatchesLinkConfig(t *testing.T) {
	testlog.Start(t)
	for _, kind := range []string{"uart", "spi", "sdio"} {
		path := filepath.Join(t.TempDir(), kind+".toml")
		if err := config.WriteTemplate(path, kind, false); err != nil {
			t.Fatalf("%s: write template: %v", kind, err)
		}
		cli, err := loadCLIConfig(path)
		if err != nil {
			t.Fatalf("%s: cli loader: %v", kind, err)
		}
		link, err := config.LoadLinkConfig(path)
		if err != nil {
			t.Fatalf("%s: link loader: %v", kind, err)
		}
		sc, err := config.SessionConfig(link)
		if err != nil {
			t.Fatalf("%s: session config: %v", kind, err)
		}
		if cli.Session != sc || cli.Device != link.Link.Device {
			t.Fatalf("%s: loaders disagree:\ncli  %+v\nlink %+v", kind, cli.Session, sc)
		}
	}
}

func TestLoadCLIConfigRejects(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	cases := map[string]string{
		"unknown key": "[link]\nbaud = 115200\n",
		"mtu":         "[link]\ninterface = \"sdio\"\nbuffer_size = 1600\n",
		"interface":   "[link]\ninterface = \"usb\"\n",
		"negative":    "[hci]\nmax_events = -1\n",
		"tiny buffer": "[link]\nbuffer_size = 16\n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name+".toml")
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("%s: write: %v", name, err)
		}
		if _, err := loadCLIConfig(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
