package protocol

import (
	"fmt"
	"strings"
)

// Transport identifies the byte-stream link to the co-processor.
type Transport uint8

const (
	TransportUART Transport = iota + 1
	TransportSPI
	TransportSDIO
)

// Maximum frame sizes per transport, header included.
const (
	MTUSDIO = 1536
	MTUSPI  = 1600
	MTUUART = 1600
)

// Serial endpoint names used by the co-processor RPC service.
const (
	EndpointResponse = "RPCRsp"
	EndpointEvent    = "RPCEvt"
)

func (t Transport) String() string {
	switch t {
	case TransportUART:
		return "uart"
	case TransportSPI:
		return "spi"
	case TransportSDIO:
		return "sdio"
	default:
		return fmt.Sprintf("transport(%d)", uint8(t))
	}
}

// MTU returns the largest frame the transport carries, or 0 if unknown.
func (t Transport) MTU() int {
	switch t {
	case TransportUART:
		return MTUUART
	case TransportSPI:
		return MTUSPI
	case TransportSDIO:
		return MTUSDIO
	default:
		return 0
	}
}

func ParseTransport(raw string) (Transport, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "uart", "serial":
		return TransportUART, nil
	case "spi":
		return TransportSPI, nil
	case "sdio":
		return TransportSDIO, nil
	default:
		return 0, fmt.Errorf("protocol: unknown transport %q", raw)
	}
}
