package session

import (
	"fmt"

	"github.com/danmuck/esphost/internal/protocol"
	"github.com/danmuck/esphost/internal/protocol/frame"
	"github.com/danmuck/esphost/internal/protocol/hci"
	"github.com/danmuck/esphost/internal/protocol/resync"
	"github.com/danmuck/esphost/internal/protocol/rpc"
	"github.com/danmuck/esphost/internal/protocol/tlv"
)

// Config defines link framing defaults.
type Config struct {
	Transport      protocol.Transport
	BufferSize     int
	VerifyChecksum bool
	SerialTLV      bool
	ResyncWindow   int
	HCI            hci.Limits
	MaxApRecords   int
}

// DefaultConfig matches a UART link to a stock ESP-Hosted slave.
func DefaultConfig() Config {
	return Config{
		Transport:      protocol.TransportUART,
		BufferSize:     protocol.MTUUART,
		VerifyChecksum: true,
		SerialTLV:      true,
		ResyncWindow:   resync.DefaultWindow,
		HCI:            hci.DefaultLimits(),
		MaxApRecords:   rpc.DefaultMaxApRecords,
	}
}

// MinBufferSize fits a header, the serial wrapping and an empty envelope.
const MinBufferSize = frame.HeaderSize + tlv.Overhead + rpc.MaxOverhead

func (c Config) Validate() error {
	if c.BufferSize < MinBufferSize {
		return fmt.Errorf("%w: buffer_size %d below %d", protocol.ErrInvalidData, c.BufferSize, MinBufferSize)
	}
	if mtu := c.Transport.MTU(); mtu > 0 && c.BufferSize > mtu {
		return fmt.Errorf("%w: buffer_size %d above %s mtu %d", protocol.ErrInvalidData, c.BufferSize, c.Transport, mtu)
	}
	if c.ResyncWindow <= 0 {
		return fmt.Errorf("%w: resync_window %d", protocol.ErrInvalidData, c.ResyncWindow)
	}
	if c.MaxApRecords <= 0 {
		return fmt.Errorf("%w: max_ap_records %d", protocol.ErrInvalidData, c.MaxApRecords)
	}
	return c.HCI.Validate()
}
