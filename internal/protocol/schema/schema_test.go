package schema

import (
	"errors"
	"testing"

	"github.com/danmuck/esphost/internal/protocol"
	"github.com/danmuck/esphost/internal/protocol/rpc"
	"github.com/danmuck/esphost/internal/testutil/testlog"
)

func TestValidateAcceptsWellFormedEnvelopes(t *testing.T) {
	testlog.Start(t)
	for _, r := range []rpc.Rpc{
		rpc.NewReq(rpc.ReqWifiScanStart, 1),
		rpc.NewResp(rpc.RespWifiScanStart, 1),
		rpc.NewEvent(rpc.EventStaScanDone),
	} {
		if err := Validate(r); err != nil {
			t.Fatalf("validate %v: %v", r, err)
		}
	}
}

func TestValidateRangeMismatchDeterministic(t *testing.T) {
	testlog.Start(t)
	err := Validate(rpc.Rpc{Type: rpc.TypeReq, ID: rpc.RespWifiStart, UID: 1})
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if ve.ID != rpc.RespWifiStart || ve.Reason != "msg_id outside msg_type range" {
		t.Fatalf("unexpected validation error: %+v", ve)
	}
	if !errors.Is(err, protocol.ErrInvalidData) {
		t.Fatalf("validation errors are invalid data")
	}
}

func TestValidateEventWithUID(t *testing.T) {
	testlog.Start(t)
	err := Validate(rpc.Rpc{Type: rpc.TypeEvent, ID: rpc.EventHeartbeat, UID: 4})
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Reason != "event carries uid" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateUnknownType(t *testing.T) {
	testlog.Start(t)
	err := Validate(rpc.Rpc{Type: rpc.TypeMax, ID: rpc.ReqWifiStart})
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Reason != "unknown msg_type" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExpectResponse(t *testing.T) {
	testlog.Start(t)
	req := rpc.NewReq(rpc.ReqGetMacAddress, 9)
	if err := ExpectResponse(req, rpc.NewResp(rpc.RespGetMacAddress, 9)); err != nil {
		t.Fatalf("matching response: %v", err)
	}
	cases := map[string]rpc.Rpc{
		"wrong id":  rpc.NewResp(rpc.RespSetMacAddress, 9),
		"wrong uid": rpc.NewResp(rpc.RespGetMacAddress, 10),
		"event":     rpc.NewEvent(rpc.EventHeartbeat),
	}
	for name, resp := range cases {
		if err := ExpectResponse(req, resp); !errors.Is(err, protocol.ErrUnexpectedResponse) {
			t.Fatalf("%s: expected ErrUnexpectedResponse, got %v", name, err)
		}
	}
}
