package hci

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danmuck/esphost/internal/protocol"
	"github.com/danmuck/esphost/internal/testutil/testlog"
)

var (
	commandComplete = []byte{0x04, 0x0E, 0x04, 0x01, 0x0B, 0x20, 0x00}
	advReportEmpty  = []byte{
		0x04, 0x3E, 0x0C, 0x02, 0x01, 0x00, 0x00,
		0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x00, 0xC8,
	}
)

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// advEvent builds one LE advertising report event from report bodies.
func advEvent(reports ...[]byte) []byte {
	params := []byte{SubAdvertisingReport, byte(len(reports))}
	for _, r := range reports {
		params = append(params, r...)
	}
	return append([]byte{H4Event, EvtLEMeta, byte(len(params))}, params...)
}

func report(addrLow byte, data []byte, rssi int8) []byte {
	r := []byte{0x00, 0x01, addrLow, 0x22, 0x33, 0x44, 0x55, 0x66, byte(len(data))}
	r = append(r, data...)
	return append(r, byte(rssi))
}

func TestParseCommandComplete(t *testing.T) {
	testlog.Start(t)
	events, err := ParseEvents(commandComplete)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Kind != KindCommandComplete || ev.NumCmd != 1 || ev.Opcode != OpLESetScanParams || ev.Status != 0 {
		t.Fatalf("unexpected event %+v", ev)
	}
	if len(ev.Rest) != 0 {
		t.Fatalf("expected empty rest, got % X", ev.Rest)
	}
}

func TestParseAdvertisingReport(t *testing.T) {
	testlog.Start(t)
	events, err := ParseEvents(advReportEmpty)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(events) != 1 || events[0].Kind != KindAdvertisingReport {
		t.Fatalf("unexpected events %+v", events)
	}
	reps := events[0].Reports
	if len(reps) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reps))
	}
	r := reps[0]
	if r.Addr != [6]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF} {
		t.Fatalf("addr % X", r.Addr)
	}
	if r.RSSI != -56 || r.EventType != 0 || r.AddrType != 0 {
		t.Fatalf("unexpected report %+v", r)
	}
	if len(r.Data) != 0 || len(r.Parsed) != 0 {
		t.Fatalf("expected no advertising data, got % X / %d parsed", r.Data, len(r.Parsed))
	}
	if got := r.AddrString(); got != "FF:EE:DD:CC:BB:AA" {
		t.Fatalf("addr string %q", got)
	}
}

func TestParseCommandStatus(t *testing.T) {
	testlog.Start(t)
	events, err := ParseEvents([]byte{0x04, 0x0F, 0x04, 0x0C, 0x01, 0x03, 0x0C})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ev := events[0]
	if ev.Kind != KindCommandStatus || ev.Status != 0x0C || ev.NumCmd != 1 || ev.Opcode != OpReset {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestParseTwoEventsInOrder(t *testing.T) {
	testlog.Start(t)
	events, err := ParseEvents(concat(commandComplete, advReportEmpty))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Kind != KindCommandComplete || events[1].Kind != KindAdvertisingReport {
		t.Fatalf("order: %s, %s", events[0].Kind, events[1].Kind)
	}
}

func TestParseTrailingGarbage(t *testing.T) {
	testlog.Start(t)
	for _, tail := range [][]byte{{0x04}, {0x04, 0x0E}, {0x99, 0x01}} {
		events, err := ParseEvents(concat(commandComplete, tail))
		if err != nil {
			t.Fatalf("tail % X: %v", tail, err)
		}
		if len(events) != 1 {
			t.Fatalf("tail % X: expected 1 event, got %d", tail, len(events))
		}
	}
}

func TestParseStopsAtForeignIndicator(t *testing.T) {
	testlog.Start(t)
	acl := []byte{H4ACL, 0x01, 0x20, 0x04, 0x00, 0xDE, 0xAD, 0xBE, 0xEF}
	events, err := ParseEvents(concat(commandComplete, acl, commandComplete))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected parsing to stop at the ACL packet, got %d events", len(events))
	}
}

func TestParseOverrunIsInvalid(t *testing.T) {
	testlog.Start(t)
	truncated := advReportEmpty[:len(advReportEmpty)-1]
	events, err := ParseEvents(concat(commandComplete, truncated))
	if !errors.Is(err, protocol.ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected the decoded prefix, got %d events", len(events))
	}
}

func TestParseUnknownEvent(t *testing.T) {
	testlog.Start(t)
	events, err := ParseEvents([]byte{0x04, 0x05, 0x04, 0x00, 0x40, 0x00, 0x13})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ev := events[0]
	if ev.Kind != KindUnknown || ev.Code != 0x05 || !bytes.Equal(ev.Params, []byte{0x00, 0x40, 0x00, 0x13}) {
		t.Fatalf("unexpected event %+v", ev)
	}

	// Short command complete and other LE sub-events are also unknown.
	events, err = ParseEvents(concat([]byte{0x04, 0x0E, 0x01, 0x01}, []byte{0x04, 0x3E, 0x02, 0x01, 0x00}))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(events) != 2 || events[0].Kind != KindUnknown || events[1].Kind != KindUnknown {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestParseReportBounds(t *testing.T) {
	testlog.Start(t)
	name := []byte{0x05, byte(AdCompleteName), 'e', 's', 'p', '!'}

	// Six reports declared, limit keeps four.
	var reps [][]byte
	for i := 0; i < 6; i++ {
		reps = append(reps, report(byte(i), name, -40))
	}
	events, err := ParseEvents(advEvent(reps...))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := events[0].Reports
	if len(got) != DefaultLimits().MaxReports {
		t.Fatalf("expected %d reports, got %d", DefaultLimits().MaxReports, len(got))
	}
	for i, r := range got {
		if r.Addr[0] != byte(i) || r.RSSI != -40 {
			t.Fatalf("report %d: %+v", i, r)
		}
		if n, ok := r.Parsed[0].Name(); !ok || n != "esp!" {
			t.Fatalf("report %d: name %q %v", i, n, ok)
		}
	}

	// Declared count larger than the bytes present drops the missing ones.
	ev := advEvent(report(0x01, nil, -10))
	ev[4] = 3
	events, err = ParseEvents(ev)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(events[0].Reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(events[0].Reports))
	}
}

func TestParserReuseKeepsReportsSeparate(t *testing.T) {
	testlog.Start(t)
	p, err := NewParser(DefaultLimits())
	if err != nil {
		t.Fatalf("new parser: %v", err)
	}
	buf := concat(advEvent(report(0x01, nil, -1)), advEvent(report(0x02, nil, -2)))
	events, err := p.Parse(buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if events[0].Reports[0].Addr[0] != 0x01 || events[1].Reports[0].Addr[0] != 0x02 {
		t.Fatalf("reports share storage: %+v", events)
	}
	if events, err = p.Parse(commandComplete); err != nil || len(events) != 1 {
		t.Fatalf("reparse: %d events, %v", len(events), err)
	}
}

func TestParseMaxEventsCapacity(t *testing.T) {
	testlog.Start(t)
	p, err := NewParser(Limits{MaxEvents: 2, MaxReports: 1, MaxAdvData: 1})
	if err != nil {
		t.Fatalf("new parser: %v", err)
	}
	events, err := p.Parse(concat(commandComplete, commandComplete, commandComplete))
	if !errors.Is(err, protocol.ErrCapacity) {
		t.Fatalf("expected ErrCapacity, got %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 decoded events, got %d", len(events))
	}
}

func TestNewParserRejectsZeroLimits(t *testing.T) {
	testlog.Start(t)
	if _, err := NewParser(Limits{MaxEvents: 1}); !errors.Is(err, protocol.ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}

func FuzzParse(f *testing.F) {
	f.Add(commandComplete)
	f.Add(advReportEmpty)
	f.Add(advEvent(report(0x01, []byte{0x02, 0x01, 0x06, 0x03, 0xFF, 0x4C}, -70)))

	p, err := NewParser(DefaultLimits())
	if err != nil {
		f.Fatalf("new parser: %v", err)
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		events, _ := p.Parse(data)
		if len(events) > p.Limits().MaxEvents {
			t.Fatalf("%d events above limit", len(events))
		}
		for _, ev := range events {
			if len(ev.Reports) > p.Limits().MaxReports {
				t.Fatalf("%d reports above limit", len(ev.Reports))
			}
			for _, r := range ev.Reports {
				if len(r.Parsed) > p.Limits().MaxAdvData {
					t.Fatalf("%d ad structures above limit", len(r.Parsed))
				}
			}
		}
	})
}

func TestMakeCommand(t *testing.T) {
	testlog.Start(t)
	p := DefaultScanParams()
	if err := p.Validate(); err != nil {
		t.Fatalf("default scan params: %v", err)
	}
	params := p.Bytes()
	buf := make([]byte, 16)
	n, err := MakeCommand(buf, OpLESetScanParams, params[:])
	if err != nil {
		t.Fatalf("make: %v", err)
	}
	want := []byte{0x0B, 0x20, 0x07, 0x01, 0xA0, 0x00, 0x50, 0x00, 0x00, 0x00}
	if !bytes.Equal(buf[:n], want) {
		t.Fatalf("command % X, want % X", buf[:n], want)
	}
	if n, err := MakeCommand(buf, OpReset, nil); err != nil || !bytes.Equal(buf[:n], []byte{0x03, 0x0C, 0x00}) {
		t.Fatalf("reset: % X %v", buf[:n], err)
	}
	if _, err := MakeCommand(buf[:5], OpLESetScanParams, params[:]); !errors.Is(err, protocol.ErrCapacity) {
		t.Fatalf("short buffer: expected ErrCapacity, got %v", err)
	}
	if _, err := MakeCommand(make([]byte, 512), OpReset, make([]byte, 256)); !errors.Is(err, protocol.ErrCapacity) {
		t.Fatalf("long params: expected ErrCapacity, got %v", err)
	}
}

func TestScanParamsValidate(t *testing.T) {
	testlog.Start(t)
	bad := []ScanParams{
		{Type: 2, Interval: 0x10, Window: 0x10},
		{Type: ScanPassive, Interval: 0x0002, Window: 0x0002},
		{Type: ScanPassive, Interval: 0x0010, Window: 0x0020},
	}
	for i, p := range bad {
		if err := p.Validate(); !errors.Is(err, protocol.ErrInvalidData) {
			t.Fatalf("case %d: expected ErrInvalidData, got %v", i, err)
		}
	}
	if got := ScanEnable(true, true); got != [2]byte{1, 1} {
		t.Fatalf("scan enable % X", got)
	}
}

func TestOpcodeFields(t *testing.T) {
	testlog.Start(t)
	if OpLESetScanEnable.OGF() != 0x08 || OpLESetScanEnable.OCF() != 0x000C {
		t.Fatalf("ogf=0x%02X ocf=0x%03X", OpLESetScanEnable.OGF(), OpLESetScanEnable.OCF())
	}
	if MakeOpcode(0x03, 0x0003) != OpReset {
		t.Fatalf("make opcode")
	}
	for raw, want := range map[string]Opcode{"le_set_scan_enable": OpLESetScanEnable, "0x0C03": OpReset} {
		if got, err := ParseOpcode(raw); err != nil || got != want {
			t.Fatalf("%q: got %s err=%v", raw, got, err)
		}
	}
	if _, err := ParseOpcode("LE_NOPE"); !errors.Is(err, protocol.ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
	if OpReset.String() != "RESET" || Opcode(0x1234).String() != "opcode(0x1234)" {
		t.Fatalf("names: %s %s", OpReset, Opcode(0x1234))
	}
}
