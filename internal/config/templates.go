package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "uart", "serial":
		return uartTemplate, nil
	case "spi":
		return spiTemplate, nil
	case "sdio":
		return sdioTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const uartTemplate = `[link]
interface = "uart"
device = "/dev/ttyUSB0"
buffer_size = 1600
verify_checksum = true
serial_tlv = true
resync_window = 4

[hci]
max_events = 8
max_reports = 4
max_adv_data = 8

[rpc]
max_ap_records = 30

[metrics]
addr = ""
`

const spiTemplate = `[link]
interface = "spi"
device = "/dev/spidev0.0"
buffer_size = 1600
verify_checksum = true
serial_tlv = true
resync_window = 4

[hci]
max_events = 8
max_reports = 4
max_adv_data = 8

[rpc]
max_ap_records = 30
`

const sdioTemplate = `[link]
interface = "sdio"
device = "/dev/mmcblk1"
buffer_size = 1536
verify_checksum = true
serial_tlv = true

[rpc]
max_ap_records = 20
`
