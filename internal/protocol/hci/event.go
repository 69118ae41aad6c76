package hci

import (
	"encoding/binary"
	"fmt"

	"github.com/danmuck/esphost/internal/logs"
	"github.com/danmuck/esphost/internal/protocol"
)

// Limits bound the storage a Parser preallocates.
type Limits struct {
	MaxEvents  int
	MaxReports int
	MaxAdvData int
}

func DefaultLimits() Limits {
	return Limits{MaxEvents: 8, MaxReports: 4, MaxAdvData: 8}
}

func (l Limits) Validate() error {
	if l.MaxEvents <= 0 || l.MaxReports <= 0 || l.MaxAdvData <= 0 {
		return fmt.Errorf("%w: hci limits must be positive (%+v)", protocol.ErrInvalidData, l)
	}
	return nil
}

type EventKind uint8

const (
	KindUnknown EventKind = iota
	KindCommandComplete
	KindCommandStatus
	KindAdvertisingReport
)

func (k EventKind) String() string {
	switch k {
	case KindCommandComplete:
		return "command-complete"
	case KindCommandStatus:
		return "command-status"
	case KindAdvertisingReport:
		return "advertising-report"
	default:
		return "unknown"
	}
}

// Event is one decoded HCI event. Which fields are set depends on Kind:
//
//	CommandComplete   NumCmd, Opcode, Status, Rest
//	CommandStatus     Status, NumCmd, Opcode
//	AdvertisingReport Reports
//	Unknown           Params
//
// Code and Params are always set.
type Event struct {
	Kind    EventKind
	Code    uint8
	NumCmd  uint8
	Opcode  Opcode
	Status  uint8
	Rest    []byte
	Reports []AdvReport
	Params  []byte
}

// AdvReportPrefixLen covers evt_type, addr_type, addr and data_len.
const AdvReportPrefixLen = 9

// AdvReport is one device entry of an LE advertising report.
type AdvReport struct {
	EventType uint8
	AddrType  uint8
	// Addr is in wire order, least significant byte first.
	Addr [6]byte
	RSSI int8
	Data []byte
	// Parsed holds the AD structures found in Data, truncated at
	// Limits.MaxAdvData.
	Parsed []AdvData
}

// AddrString formats Addr most significant byte first.
func (r AdvReport) AddrString() string {
	a := r.Addr
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[5], a[4], a[3], a[2], a[1], a[0])
}

// Parser walks buffers of concatenated HCI events. A Parser is not safe for
// concurrent use; results are valid until the next call to Parse.
type Parser struct {
	limits  Limits
	events  []Event
	reports []AdvReport
	ads     []AdvData
}

func NewParser(limits Limits) (*Parser, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	nrep := limits.MaxEvents * limits.MaxReports
	return &Parser{
		limits:  limits,
		events:  make([]Event, 0, limits.MaxEvents),
		reports: make([]AdvReport, nrep),
		ads:     make([]AdvData, nrep*limits.MaxAdvData),
	}, nil
}

func (p *Parser) Limits() Limits { return p.limits }

// Parse decodes events from buf until fewer than a header's worth of bytes
// remain or the next byte is not an H4 event indicator. The latter is not an
// error: the rest belongs to another packet type.
//
// A declared length running past buf is InvalidData. More than
// Limits.MaxEvents events is ErrCapacity; the events decoded so far are
// returned with it.
func (p *Parser) Parse(buf []byte) ([]Event, error) {
	p.events = p.events[:0]
	for len(buf) >= EventHeaderLen {
		if buf[0] != H4Event {
			logs.Wiref(logs.SubHCI, "hci.Parse stop at indicator=0x%02x remaining=%d", buf[0], len(buf))
			break
		}
		code := buf[1]
		plen := int(buf[2])
		if len(buf) < EventHeaderLen+plen {
			return p.events, fmt.Errorf("%w: event 0x%02X declares %d parameter bytes, %d remain",
				protocol.ErrInvalidData, code, plen, len(buf)-EventHeaderLen)
		}
		if len(p.events) == p.limits.MaxEvents {
			return p.events, fmt.Errorf("%w: more than %d hci events in one buffer", protocol.ErrCapacity, p.limits.MaxEvents)
		}
		params := buf[EventHeaderLen : EventHeaderLen+plen]
		p.events = append(p.events, p.dispatch(len(p.events), code, params))
		buf = buf[EventHeaderLen+plen:]
	}
	return p.events, nil
}

func (p *Parser) dispatch(slot int, code uint8, params []byte) Event {
	ev := Event{Kind: KindUnknown, Code: code, Params: params}
	switch {
	case code == EvtCommandComplete && len(params) >= 4:
		ev.Kind = KindCommandComplete
		ev.NumCmd = params[0]
		ev.Opcode = Opcode(binary.LittleEndian.Uint16(params[1:3]))
		ev.Status = params[3]
		ev.Rest = params[4:]
	case code == EvtCommandStatus && len(params) >= 4:
		ev.Kind = KindCommandStatus
		ev.Status = params[0]
		ev.NumCmd = params[1]
		ev.Opcode = Opcode(binary.LittleEndian.Uint16(params[2:4]))
	case code == EvtLEMeta && len(params) >= 2 && params[0] == SubAdvertisingReport:
		ev.Kind = KindAdvertisingReport
		ev.Reports = p.parseReports(slot, params[1], params[2:])
	default:
		logs.Debugf("hci.Parse unknown event=0x%02x plen=%d", code, len(params))
	}
	return ev
}

// parseReports decodes up to num reports from b into the storage for event
// slot. Reports that do not fit in b are dropped, and anything beyond
// Limits.MaxReports is ignored.
func (p *Parser) parseReports(slot int, num uint8, b []byte) []AdvReport {
	base := slot * p.limits.MaxReports
	out := p.reports[base : base : base+p.limits.MaxReports]
	for i := 0; i < int(num) && len(out) < cap(out); i++ {
		if len(b) < AdvReportPrefixLen+1 {
			break
		}
		dlen := int(b[8])
		if len(b) < AdvReportPrefixLen+dlen+1 {
			break
		}
		r := AdvReport{EventType: b[0], AddrType: b[1]}
		copy(r.Addr[:], b[2:8])
		r.Data = b[AdvReportPrefixLen : AdvReportPrefixLen+dlen]
		r.RSSI = int8(b[AdvReportPrefixLen+dlen])

		adBase := (base + len(out)) * p.limits.MaxAdvData
		r.Parsed = ParseAdvData(r.Data, p.ads[adBase:adBase:adBase+p.limits.MaxAdvData])

		out = append(out, r)
		b = b[AdvReportPrefixLen+dlen+1:]
	}
	if int(num) > len(out) {
		logs.Debugf("hci.Parse kept %d of %d advertising reports", len(out), num)
	}
	return out
}

// ParseEvents decodes buf with a parser using DefaultLimits. The returned
// events own their storage.
func ParseEvents(buf []byte) ([]Event, error) {
	p, err := NewParser(DefaultLimits())
	if err != nil {
		return nil, err
	}
	return p.Parse(buf)
}
