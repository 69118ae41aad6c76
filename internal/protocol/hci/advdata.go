package hci

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// AdvType is a Bluetooth common data type code.
type AdvType uint8

const (
	AdFlags            AdvType = 0x01
	AdIncomplete16     AdvType = 0x02
	AdComplete16       AdvType = 0x03
	AdIncomplete32     AdvType = 0x04
	AdComplete32       AdvType = 0x05
	AdIncomplete128    AdvType = 0x06
	AdComplete128      AdvType = 0x07
	AdShortName        AdvType = 0x08
	AdCompleteName     AdvType = 0x09
	AdTxPower          AdvType = 0x0A
	AdClassOfDevice    AdvType = 0x0D
	AdDeviceID         AdvType = 0x10
	AdServiceData16    AdvType = 0x16
	AdManufacturerData AdvType = 0xFF
)

// AdvKind is the decoded variant of an AD structure.
type AdvKind uint8

const (
	AdvOther AdvKind = iota
	AdvFlags
	AdvUUID16
	AdvUUID32
	AdvUUID128
	AdvShortName
	AdvCompleteName
	AdvClassOfDevice
	AdvDeviceID
	AdvServiceData16
	AdvManufacturer
)

var advKindNames = [...]string{
	"other", "flags", "uuid16", "uuid32", "uuid128", "short-name",
	"complete-name", "class-of-device", "device-id", "service-data16", "manufacturer",
}

func (k AdvKind) String() string {
	if int(k) < len(advKindNames) {
		return advKindNames[k]
	}
	return fmt.Sprintf("adv-kind(%d)", uint8(k))
}

// AdvData is one AD structure. Value borrows from the report data.
type AdvData struct {
	Kind AdvKind
	Type AdvType
	// Complete is false for the incomplete UUID list types.
	Complete bool
	Value    []byte
}

func (a AdvData) Flags() (uint8, bool) {
	if a.Kind != AdvFlags {
		return 0, false
	}
	return a.Value[0], true
}

// Name returns the local name for both name kinds.
func (a AdvData) Name() (string, bool) {
	if a.Kind != AdvShortName && a.Kind != AdvCompleteName {
		return "", false
	}
	return string(a.Value), true
}

// UUIDWidth is the byte width of one entry in a UUID list, zero otherwise.
func (a AdvData) UUIDWidth() int {
	switch a.Kind {
	case AdvUUID16:
		return 2
	case AdvUUID32:
		return 4
	case AdvUUID128:
		return 16
	default:
		return 0
	}
}

func (a AdvData) NumUUIDs() int {
	if w := a.UUIDWidth(); w > 0 {
		return len(a.Value) / w
	}
	return 0
}

// UUID returns entry i of a UUID list in wire (little-endian) order.
func (a AdvData) UUID(i int) []byte {
	w := a.UUIDWidth()
	if w == 0 || i < 0 || i >= a.NumUUIDs() {
		return nil
	}
	return a.Value[i*w : (i+1)*w]
}

func (a AdvData) UUID16(i int) (uint16, bool) {
	if a.Kind != AdvUUID16 {
		return 0, false
	}
	u := a.UUID(i)
	if u == nil {
		return 0, false
	}
	return binary.LittleEndian.Uint16(u), true
}

// ClassOfDevice returns the 24-bit class field.
func (a AdvData) ClassOfDevice() (uint32, bool) {
	if a.Kind != AdvClassOfDevice {
		return 0, false
	}
	v := a.Value
	return uint32(v[0]) | uint32(v[1])<<8 | uint32(v[2])<<16, true
}

type DeviceID struct {
	Source  uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

func (a AdvData) DeviceID() (DeviceID, bool) {
	if a.Kind != AdvDeviceID {
		return DeviceID{}, false
	}
	v := a.Value
	return DeviceID{
		Source:  binary.LittleEndian.Uint16(v[0:]),
		Vendor:  binary.LittleEndian.Uint16(v[2:]),
		Product: binary.LittleEndian.Uint16(v[4:]),
		Version: binary.LittleEndian.Uint16(v[6:]),
	}, true
}

func (a AdvData) ServiceData16() (uuid uint16, data []byte, ok bool) {
	if a.Kind != AdvServiceData16 {
		return 0, nil, false
	}
	return binary.LittleEndian.Uint16(a.Value), a.Value[2:], true
}

func (a AdvData) Manufacturer() (company uint16, data []byte, ok bool) {
	if a.Kind != AdvManufacturer {
		return 0, nil, false
	}
	return binary.LittleEndian.Uint16(a.Value), a.Value[2:], true
}

// ParseAdvData appends the AD structures in d to dst, up to cap(dst). A zero
// length or a length running past the end of d stops the walk; whatever was
// decoded before that point is returned.
func ParseAdvData(d []byte, dst []AdvData) []AdvData {
	for len(d) >= 2 && len(dst) < cap(dst) {
		n := int(d[0])
		if n == 0 || n > len(d)-1 {
			break
		}
		dst = append(dst, classify(AdvType(d[1]), d[2:1+n]))
		d = d[1+n:]
	}
	return dst
}

// classify picks the variant for one AD structure. Values whose length does
// not fit their type fall back to Other so accessors can index freely.
func classify(t AdvType, v []byte) AdvData {
	ad := AdvData{Kind: AdvOther, Type: t, Value: v}
	switch t {
	case AdFlags:
		if len(v) == 1 {
			ad.Kind = AdvFlags
		}
	case AdIncomplete16, AdComplete16:
		if len(v)%2 == 0 {
			ad.Kind, ad.Complete = AdvUUID16, t == AdComplete16
		}
	case AdIncomplete32, AdComplete32:
		if len(v)%4 == 0 {
			ad.Kind, ad.Complete = AdvUUID32, t == AdComplete32
		}
	case AdIncomplete128, AdComplete128:
		if len(v)%16 == 0 {
			ad.Kind, ad.Complete = AdvUUID128, t == AdComplete128
		}
	case AdShortName:
		if utf8.Valid(v) {
			ad.Kind = AdvShortName
		}
	case AdCompleteName:
		if utf8.Valid(v) {
			ad.Kind = AdvCompleteName
		}
	case AdClassOfDevice:
		if len(v) == 3 {
			ad.Kind = AdvClassOfDevice
		}
	case AdDeviceID:
		if len(v) == 8 {
			ad.Kind = AdvDeviceID
		}
	case AdServiceData16:
		if len(v) >= 2 {
			ad.Kind = AdvServiceData16
		}
	case AdManufacturerData:
		if len(v) >= 2 {
			ad.Kind = AdvManufacturer
		}
	}
	return ad
}
