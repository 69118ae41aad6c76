package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/danmuck/esphost/internal/logs"
	"github.com/danmuck/esphost/internal/observability"
	"github.com/danmuck/esphost/internal/protocol"
	"github.com/danmuck/esphost/internal/protocol/frame"
	"github.com/danmuck/esphost/internal/protocol/hci"
	"github.com/danmuck/esphost/internal/protocol/resync"
	"github.com/danmuck/esphost/internal/protocol/rpc"
	"github.com/danmuck/esphost/internal/protocol/schema"
	"github.com/danmuck/esphost/internal/protocol/tlv"
	"google.golang.org/protobuf/proto"
)

// WriteFunc hands one complete frame to the transport. The slice is only
// valid for the duration of the call.
type WriteFunc func([]byte) error

// Session frames outbound traffic and decodes inbound buffers for one link.
// Send methods are safe for concurrent use. Receive is meant for a single
// reader: its results borrow from the input buffer and from storage reused
// by the next call.
type Session struct {
	cfg     Config
	seq     *frame.SeqCounter
	write   WriteFunc
	metrics *observability.Recorder
	pending *Pending
	now     func() time.Time

	mu sync.Mutex
	tx []byte

	parser *hci.Parser
	aps    []rpc.ApRecord
}

// New builds a session. seq is shared with any other sender on the same
// transport. metrics may be nil.
func New(cfg Config, seq *frame.SeqCounter, write WriteFunc, metrics *observability.Recorder) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if seq == nil || write == nil {
		return nil, errors.New("session: seq counter and write func are required")
	}
	parser, err := hci.NewParser(cfg.HCI)
	if err != nil {
		return nil, err
	}
	return &Session{
		cfg:     cfg,
		seq:     seq,
		write:   write,
		metrics: metrics,
		pending: NewPending(),
		now:     time.Now,
		tx:      make([]byte, cfg.BufferSize),
		parser:  parser,
		aps:     make([]rpc.ApRecord, cfg.MaxApRecords),
	}, nil
}

func (s *Session) Config() Config    { return s.cfg }
func (s *Session) Pending() *Pending { return s.pending }

// SendRequest frames payload as the body of request id and registers uid
// as awaiting the matching response.
func (s *Session) SendRequest(id rpc.MsgID, uid uint32, payload []byte) error {
	return s.sendRPC(rpc.NewReq(id, uid), func(r rpc.Rpc, dst []byte) (int, error) {
		return r.ToBytes(dst, payload)
	})
}

// SendEmpty sends a request whose body has no fields set.
func (s *Session) SendEmpty(id rpc.MsgID, uid uint32) error {
	return s.SendRequest(id, uid, nil)
}

// SendProto marshals m straight into the frame buffer as the request body.
func (s *Session) SendProto(id rpc.MsgID, uid uint32, m proto.Message) error {
	return s.sendRPC(rpc.NewReq(id, uid), func(r rpc.Rpc, dst []byte) (int, error) {
		return r.AppendMessage(dst, m)
	})
}

func (s *Session) sendRPC(r rpc.Rpc, encode func(rpc.Rpc, []byte) (int, error)) error {
	if err := schema.Validate(r); err != nil {
		return err
	}
	if r.Type != rpc.TypeReq {
		return fmt.Errorf("%w: host only sends requests, got %s", protocol.ErrInvalidData, r.Type)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	body := s.tx[frame.HeaderSize:]
	if s.cfg.SerialTLV {
		body = body[tlv.Overhead:]
	}
	n, err := encode(r, body)
	if err != nil {
		return err
	}
	if s.cfg.SerialTLV {
		if n, err = tlv.EncodeInPlace(s.tx[frame.HeaderSize:], protocol.EndpointResponse, n); err != nil {
			return err
		}
	}

	if err := s.pending.Add(PendingRequest{UID: r.UID, ID: r.ID, SentAt: s.now()}); err != nil {
		return err
	}
	if err := s.flush(frame.IfSerial, frame.PacketNone, n); err != nil {
		s.pending.Remove(r.UID)
		return err
	}
	logs.Debugf("session.sendRPC %s bytes=%d", r, n)
	return nil
}

// SendHci frames an HCI packet of the given kind. payload starts after the
// H4 indicator, which travels in the header's packet type.
func (s *Session) SendHci(kind frame.PacketType, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if frame.HeaderSize+len(payload) > len(s.tx) {
		return fmt.Errorf("%w: hci payload %d bytes exceeds buffer", protocol.ErrCapacity, len(payload))
	}
	n := copy(s.tx[frame.HeaderSize:], payload)
	return s.flush(frame.IfHci, kind, n)
}

// SendHciCommand builds and sends one HCI command.
func (s *Session) SendHciCommand(op hci.Opcode, params []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := hci.MakeCommand(s.tx[frame.HeaderSize:], op, params)
	if err != nil {
		return err
	}
	if err := s.flush(frame.IfHci, frame.PacketHciCommand, n); err != nil {
		return err
	}
	logs.Debugf("session.SendHciCommand op=%s params=%d", op, len(params))
	return nil
}

// flush seals the payloadLen bytes at tx[HeaderSize:] and writes the frame.
// Callers hold s.mu.
func (s *Session) flush(iface frame.InterfaceType, pkt frame.PacketType, payloadLen int) error {
	h, err := frame.NewHeader(s.seq, iface, pkt)
	if err != nil {
		return err
	}
	total, err := frame.Seal(s.tx, h, payloadLen)
	if err != nil {
		return err
	}
	if err := s.write(s.tx[:total]); err != nil {
		return fmt.Errorf("%w: write %s frame seq=%d: %w", protocol.ErrComms, iface, h.SeqNum, err)
	}
	logs.Wiref(logs.SubFrame, "tx seq=%d % X", h.SeqNum, s.tx[:total])
	s.metrics.Frame(observability.DirectionTx, iface.String())
	return nil
}

// InboundKind says which fields of an Inbound are set.
type InboundKind uint8

const (
	InboundRPC InboundKind = iota + 1
	InboundHCI
	InboundData
	InboundPrivate
)

func (k InboundKind) String() string {
	switch k {
	case InboundRPC:
		return "rpc"
	case InboundHCI:
		return "hci"
	case InboundData:
		return "data"
	case InboundPrivate:
		return "private"
	default:
		return fmt.Sprintf("inbound(%d)", uint8(k))
	}
}

// Inbound is one decoded receive buffer.
type Inbound struct {
	Kind InboundKind
	// Header is zero when Resync reports a shifted buffer.
	Header frame.Header
	Resync resync.Result

	// RPC
	Rpc     rpc.Rpc
	Payload []byte
	// Request is the pending request a response answered.
	Request PendingRequest

	// HCI
	Events []hci.Event
}

// Receive decodes one buffer holding a single frame. Misaligned buffers are
// recovered as HCI. A response carrying a device error code returns the
// decoded Inbound together with a *protocol.DeviceError.
func (s *Session) Receive(buf []byte) (Inbound, error) {
	logs.Wiref(logs.SubFrame, "rx % X", buf)
	res, err := resync.Inspect(buf, resync.Options{Window: s.cfg.ResyncWindow})
	if err != nil {
		s.metrics.Resync(observability.ResyncFailed)
		s.metrics.DecodeError(observability.StageHeader)
		return Inbound{}, err
	}
	if !res.Aligned {
		s.metrics.Resync(observability.ResyncShifted)
		in := Inbound{Kind: InboundHCI, Resync: res}
		return s.receiveHci(in, res.Payload(buf))
	}
	s.metrics.Resync(observability.ResyncAligned)

	f, err := frame.Parse(buf, s.cfg.VerifyChecksum)
	if err != nil {
		if errors.Is(err, protocol.ErrChecksumMismatch) {
			s.metrics.ChecksumMismatch()
		}
		s.metrics.DecodeError(observability.StageHeader)
		return Inbound{}, err
	}
	s.metrics.Frame(observability.DirectionRx, f.Header.IfType.String())
	in := Inbound{Header: f.Header, Resync: res}

	switch f.Header.IfType {
	case frame.IfSerial:
		in.Kind = InboundRPC
		return s.receiveRPC(in, f.Payload)
	case frame.IfHci:
		in.Kind = InboundHCI
		return s.receiveHci(in, f.Payload)
	case frame.IfStation, frame.IfAccessPoint, frame.IfEthernet:
		in.Kind = InboundData
	default:
		in.Kind = InboundPrivate
	}
	in.Payload = f.Payload
	return in, nil
}

func (s *Session) receiveHci(in Inbound, payload []byte) (Inbound, error) {
	events, err := s.parser.Parse(payload)
	in.Events = events
	for _, ev := range events {
		s.metrics.HciEvent(ev.Kind.String())
	}
	if err != nil {
		s.metrics.DecodeError(observability.StageHCI)
		return in, err
	}
	return in, nil
}

func (s *Session) receiveRPC(in Inbound, payload []byte) (Inbound, error) {
	if s.cfg.SerialTLV {
		msg, err := tlv.Decode(payload)
		if err != nil {
			s.metrics.DecodeError(observability.StageTLV)
			return Inbound{}, err
		}
		payload = msg.Data
	}

	r, start, n, err := rpc.FromBytes(payload)
	var devErr *protocol.DeviceError
	if err != nil && !errors.As(err, &devErr) {
		s.metrics.DecodeError(observability.StageEnvelope)
		return Inbound{}, err
	}
	in.Rpc = r
	in.Payload = payload[start : start+n]

	switch r.Type {
	case rpc.TypeEvent:
		if verr := schema.Validate(r); verr != nil {
			s.metrics.DecodeError(observability.StageEnvelope)
			return Inbound{}, verr
		}
		return in, nil
	case rpc.TypeResp:
		req, ok := s.pending.Get(r.UID)
		if !ok {
			s.metrics.DecodeError(observability.StageMatch)
			return in, fmt.Errorf("%w: %s matches no pending request", protocol.ErrUnexpectedResponse, r)
		}
		in.Request = req
		// A mismatched response leaves the request pending for the real one.
		if merr := schema.ExpectResponse(rpc.NewReq(req.ID, req.UID), r); merr != nil {
			s.metrics.DecodeError(observability.StageMatch)
			return in, merr
		}
		s.pending.Resolve(r.UID)
		if devErr != nil {
			return in, devErr
		}
		return in, nil
	default:
		s.metrics.DecodeError(observability.StageMatch)
		return in, fmt.Errorf("%w: host received %s", protocol.ErrUnexpectedResponse, r)
	}
}

// Expect checks that in is the RPC message id.
func Expect(in Inbound, id rpc.MsgID) error {
	if in.Kind != InboundRPC || in.Rpc.ID != id {
		return fmt.Errorf("%w: want %s, got %s %s", protocol.ErrUnexpectedResponse, id, in.Kind, in.Rpc.ID)
	}
	return nil
}

// ApRecords decodes a scan results response into storage sized by
// Config.MaxApRecords. The records are valid until the next call.
func (s *Session) ApRecords(in Inbound) (rpc.ApRecords, error) {
	if err := Expect(in, rpc.RespWifiScanGetApRecords); err != nil {
		return rpc.ApRecords{}, err
	}
	return rpc.ParseApRecords(in.Payload, s.aps)
}
