package protocol

import (
	"errors"
	"fmt"
)

// Error kinds. Layer packages wrap these with context, callers match with errors.Is.
var (
	ErrInvalidData        = errors.New("protocol: invalid data")
	ErrCapacity           = errors.New("protocol: capacity exceeded")
	ErrChecksumMismatch   = errors.New("protocol: checksum mismatch")
	ErrUnexpectedResponse = errors.New("protocol: unexpected response")
	ErrTimeout            = errors.New("protocol: timeout")
	ErrComms              = errors.New("protocol: communication failure")
	ErrDeviceError        = errors.New("protocol: device error")
)

// DeviceError is a co-processor error code returned in place of a response body.
type DeviceError struct {
	MsgID uint16
	Code  ErrorCode
}

func (e *DeviceError) Error() string {
	if e.MsgID == 0 {
		return fmt.Sprintf("protocol: device error %s", e.Code)
	}
	return fmt.Sprintf("protocol: device error msg_id=%d: %s", e.MsgID, e.Code)
}

func (e *DeviceError) Unwrap() error { return ErrDeviceError }

// AsDeviceError reports the device error code carried by err, if any.
func AsDeviceError(err error) (*DeviceError, bool) {
	var de *DeviceError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
