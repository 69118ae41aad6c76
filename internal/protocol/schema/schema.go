// Package schema checks envelope semantics that the codec leaves open:
// which msg_id ranges each msg_type may carry and how responses pair with
// the requests that caused them.
package schema

import (
	"fmt"

	"github.com/danmuck/esphost/internal/logs"
	"github.com/danmuck/esphost/internal/protocol"
	"github.com/danmuck/esphost/internal/protocol/rpc"
)

type ValidationError struct {
	Type   rpc.MsgType
	ID     rpc.MsgID
	Reason string
}

func (e ValidationError) Error() string {
	if e.ID == rpc.MsgIDInvalid {
		return fmt.Sprintf("schema: msg_type=%s: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("schema: msg_type=%s msg_id=%s: %s", e.Type, e.ID, e.Reason)
}

func (e ValidationError) Unwrap() error { return protocol.ErrInvalidData }

// Requirement bounds the ids one msg_type may carry, exclusive on both ends.
type Requirement struct {
	Low    rpc.MsgID
	High   rpc.MsgID
	HasUID bool
}

var requirements = map[rpc.MsgType]Requirement{
	rpc.TypeReq:   {Low: rpc.ReqBase, High: rpc.ReqMax, HasUID: true},
	rpc.TypeResp:  {Low: rpc.RespBase, High: rpc.RespMax, HasUID: true},
	rpc.TypeEvent: {Low: rpc.EventBase, High: rpc.EventMax},
}

// Validate checks that r's msg_id belongs to its msg_type and that events
// carry no uid.
func Validate(r rpc.Rpc) error {
	logs.Wiref(logs.SubRPC, "schema.Validate msg_type=%s msg_id=%s uid=%d", r.Type, r.ID, r.UID)
	req, ok := requirements[r.Type]
	if !ok {
		logs.Debugf("schema.Validate unknown msg_type=%d", r.Type)
		return ValidationError{Type: r.Type, Reason: "unknown msg_type"}
	}
	if r.ID <= req.Low || r.ID >= req.High {
		logs.Debugf("schema.Validate out of range msg_type=%s msg_id=%d", r.Type, r.ID)
		return ValidationError{Type: r.Type, ID: r.ID, Reason: "msg_id outside msg_type range"}
	}
	if !req.HasUID && r.UID != 0 {
		logs.Debugf("schema.Validate uid on event msg_id=%s uid=%d", r.ID, r.UID)
		return ValidationError{Type: r.Type, ID: r.ID, Reason: "event carries uid"}
	}
	return nil
}

// ExpectResponse checks that resp answers req.
func ExpectResponse(req, resp rpc.Rpc) error {
	if err := Validate(resp); err != nil {
		return err
	}
	want, ok := req.ID.Response()
	if req.Type != rpc.TypeReq || !ok {
		return fmt.Errorf("%w: %s has no response", protocol.ErrUnexpectedResponse, req.ID)
	}
	if resp.Type != rpc.TypeResp {
		return fmt.Errorf("%w: got %s, want response to %s", protocol.ErrUnexpectedResponse, resp.Type, req.ID)
	}
	if resp.ID != want {
		return fmt.Errorf("%w: got %s, want %s", protocol.ErrUnexpectedResponse, resp.ID, want)
	}
	if resp.UID != req.UID {
		return fmt.Errorf("%w: %s uid=%d, want uid=%d", protocol.ErrUnexpectedResponse, resp.ID, resp.UID, req.UID)
	}
	return nil
}
