package rpc

import (
	"fmt"
	"math"
	"net"

	"github.com/danmuck/esphost/internal/protocol"
	"github.com/danmuck/esphost/internal/protocol/varint"
)

// DefaultMaxApRecords bounds one scan result page.
const DefaultMaxApRecords = 30

const (
	BSSIDLen   = 6
	SSIDMaxLen = 33
	CCLen      = 3
)

// SecondChan is wifi_second_chan_t.
type SecondChan uint8

const (
	SecondNone SecondChan = iota
	SecondAbove
	SecondBelow
)

// AuthMode is wifi_auth_mode_t.
type AuthMode uint8

const (
	AuthOpen AuthMode = iota
	AuthWEP
	AuthWPAPSK
	AuthWPA2PSK
	AuthWPAWPA2PSK
	AuthEnterprise
	AuthWPA3PSK
	AuthWPA2WPA3PSK
	AuthWAPIPSK
	AuthOWE
	AuthWPA3Ent192
	AuthWPA3ExtPSK
	AuthWPA3ExtPSKMixed
	AuthDPP
	AuthWPA3Enterprise
	AuthWPA2WPA3Enterprise
	authModeEnd
)

var authNames = [...]string{
	"open", "wep", "wpa-psk", "wpa2-psk", "wpa/wpa2-psk", "enterprise", "wpa3-psk",
	"wpa2/wpa3-psk", "wapi-psk", "owe", "wpa3-ent-192", "wpa3-ext-psk",
	"wpa3-ext-psk-mixed", "dpp", "wpa3-enterprise", "wpa2/wpa3-enterprise",
}

func (a AuthMode) String() string {
	if int(a) < len(authNames) {
		return authNames[a]
	}
	return fmt.Sprintf("auth(%d)", uint8(a))
}

// Cipher is wifi_cipher_type_t.
type Cipher uint8

const (
	CipherNone Cipher = iota
	CipherWEP40
	CipherWEP104
	CipherTKIP
	CipherCCMP
	CipherTKIPCCMP
	CipherAESCMAC128
	CipherSMS4
	CipherGCMP
	CipherGCMP256
	CipherAESGMAC128
	CipherAESGMAC256
	CipherUnknown
)

// Antenna is wifi_ant_t.
type Antenna uint8

const (
	Ant0 Antenna = iota
	Ant1
	AntMax
)

// Bandwidth is the AP channel width reported in a scan record.
type Bandwidth uint8

const (
	BandwidthUnset Bandwidth = iota
	BandwidthHT20
	BandwidthHT40
	Bandwidth80
	Bandwidth160
	Bandwidth80Plus80
)

// Country is wifi_country_t.
type Country struct {
	CC         [CCLen]byte
	CCLen      uint8
	SChan      uint8
	NChan      uint8
	MaxTxPower int8
	Policy     uint8
}

// HeApInfo is wifi_he_ap_info_t as carried by the RPC schema.
type HeApInfo struct {
	Bitmask    uint32
	BSSIDIndex uint32
}

// ApRecord is wifi_ap_record_t. Fixed-size buffers keep decoding allocation free.
type ApRecord struct {
	BSSID          [BSSIDLen]byte
	SSID           [SSIDMaxLen]byte
	SSIDLen        uint8
	Primary        uint8
	Second         SecondChan
	RSSI           int8
	AuthMode       AuthMode
	PairwiseCipher Cipher
	GroupCipher    Cipher
	Ant            Antenna
	Bitmask        uint32
	Country        Country
	HeAp           HeApInfo
	Bandwidth      Bandwidth
	VhtChFreq1     uint8
	VhtChFreq2     uint8
}

func (a *ApRecord) SSIDString() string {
	return string(a.SSID[:a.SSIDLen])
}

func (a *ApRecord) BSSIDString() string {
	return net.HardwareAddr(a.BSSID[:]).String()
}

// wifi_ap_record field numbers.
const (
	apFieldBSSID          = 1
	apFieldSSID           = 2
	apFieldPrimary        = 3
	apFieldSecond         = 4
	apFieldRSSI           = 5
	apFieldAuthMode       = 6
	apFieldPairwiseCipher = 7
	apFieldGroupCipher    = 8
	apFieldAnt            = 9
	apFieldBitmask        = 10
	apFieldCountry        = 11
	apFieldHeAp           = 12
	apFieldBandwidth      = 13
	apFieldVhtChFreq1     = 14
	apFieldVhtChFreq2     = 15
)

// ParseApRecord decodes one wifi_ap_record message into dst. Unknown fields
// are skipped by their declared length; out of range enums are rejected.
func ParseApRecord(buf []byte, dst *ApRecord) error {
	*dst = ApRecord{}
	rd := NewFieldReader(buf)
	for !rd.Done() {
		f, err := rd.Next()
		if err != nil {
			return err
		}
		if err := parseApField(rd, f, dst); err != nil {
			return fmt.Errorf("ap_record field %d: %w", f.Num, err)
		}
	}
	return nil
}

func parseApField(rd *FieldReader, f Field, dst *ApRecord) error {
	want := varint.Varint
	switch f.Num {
	case apFieldBSSID, apFieldSSID, apFieldCountry, apFieldHeAp:
		want = varint.LengthDelimited
	case apFieldPrimary, apFieldSecond, apFieldRSSI, apFieldAuthMode, apFieldPairwiseCipher,
		apFieldGroupCipher, apFieldAnt, apFieldBitmask, apFieldBandwidth, apFieldVhtChFreq1, apFieldVhtChFreq2:
	default:
		return rd.Skip(f)
	}
	if f.Type != want {
		return fmt.Errorf("%w: wire type %s, want %s", protocol.ErrInvalidData, f.Type, want)
	}

	var err error
	switch f.Num {
	case apFieldBSSID:
		var n int
		if n, err = rd.CopyBytes(dst.BSSID[:]); err == nil && n != BSSIDLen {
			err = fmt.Errorf("%w: bssid of %d bytes", protocol.ErrInvalidData, n)
		}
	case apFieldSSID:
		var n int
		n, err = rd.CopyBytes(dst.SSID[:])
		dst.SSIDLen = uint8(n)
	case apFieldPrimary:
		dst.Primary, err = readU8(rd, math.MaxUint8)
	case apFieldSecond:
		var v uint8
		v, err = readU8(rd, uint64(SecondBelow))
		dst.Second = SecondChan(v)
	case apFieldRSSI:
		dst.RSSI, err = rd.Int8Inflated()
	case apFieldAuthMode:
		var v uint8
		v, err = readU8(rd, uint64(authModeEnd-1))
		dst.AuthMode = AuthMode(v)
	case apFieldPairwiseCipher:
		var v uint8
		v, err = readU8(rd, uint64(CipherUnknown))
		dst.PairwiseCipher = Cipher(v)
	case apFieldGroupCipher:
		var v uint8
		v, err = readU8(rd, uint64(CipherUnknown))
		dst.GroupCipher = Cipher(v)
	case apFieldAnt:
		var v uint8
		v, err = readU8(rd, uint64(AntMax))
		dst.Ant = Antenna(v)
	case apFieldBitmask:
		var v uint64
		v, err = rd.Uint(math.MaxUint32)
		dst.Bitmask = uint32(v)
	case apFieldCountry:
		var body []byte
		if body, err = rd.Bytes(); err == nil {
			err = parseCountry(body, &dst.Country)
		}
	case apFieldHeAp:
		var body []byte
		if body, err = rd.Bytes(); err == nil {
			err = parseHeAp(body, &dst.HeAp)
		}
	case apFieldBandwidth:
		var v uint8
		v, err = readU8(rd, uint64(Bandwidth80Plus80))
		dst.Bandwidth = Bandwidth(v)
	case apFieldVhtChFreq1:
		dst.VhtChFreq1, err = readU8(rd, math.MaxUint8)
	case apFieldVhtChFreq2:
		dst.VhtChFreq2, err = readU8(rd, math.MaxUint8)
	}
	return err
}

func readU8(rd *FieldReader, max uint64) (uint8, error) {
	v, err := rd.Uint(max)
	return uint8(v), err
}

func parseCountry(buf []byte, dst *Country) error {
	rd := NewFieldReader(buf)
	for !rd.Done() {
		f, err := rd.Next()
		if err != nil {
			return err
		}
		switch {
		case f.Num == 1 && f.Type == varint.LengthDelimited:
			var n int
			n, err = rd.CopyBytes(dst.CC[:])
			dst.CCLen = uint8(n)
		case f.Num == 2 && f.Type == varint.Varint:
			dst.SChan, err = readU8(rd, math.MaxUint8)
		case f.Num == 3 && f.Type == varint.Varint:
			dst.NChan, err = readU8(rd, math.MaxUint8)
		case f.Num == 4 && f.Type == varint.Varint:
			var v int32
			if v, err = rd.Int32(); err == nil {
				if v < math.MinInt8 || v > math.MaxInt8 {
					err = fmt.Errorf("%w: max_tx_power %d", protocol.ErrInvalidData, v)
				}
				dst.MaxTxPower = int8(v)
			}
		case f.Num == 5 && f.Type == varint.Varint:
			dst.Policy, err = readU8(rd, 1)
		default:
			err = rd.Skip(f)
		}
		if err != nil {
			return fmt.Errorf("country: %w", err)
		}
	}
	return nil
}

func parseHeAp(buf []byte, dst *HeApInfo) error {
	rd := NewFieldReader(buf)
	for !rd.Done() {
		f, err := rd.Next()
		if err != nil {
			return err
		}
		var v uint64
		switch {
		case f.Num == 1 && f.Type == varint.Varint:
			v, err = rd.Uint(math.MaxUint32)
			dst.Bitmask = uint32(v)
		case f.Num == 2 && f.Type == varint.Varint:
			v, err = rd.Uint(math.MaxUint32)
			dst.BSSIDIndex = uint32(v)
		default:
			err = rd.Skip(f)
		}
		if err != nil {
			return fmt.Errorf("he_ap: %w", err)
		}
	}
	return nil
}

// ApRecords is a decoded RespWifiScanGetApRecords body.
type ApRecords struct {
	Number  uint32
	Records []ApRecord
}

// ParseApRecords decodes a scan result page into dst's backing array. A
// page with more records than cap(dst) fails with ErrCapacity. A nonzero
// resp field is returned as *protocol.DeviceError.
func ParseApRecords(payload []byte, dst []ApRecord) (ApRecords, error) {
	out := ApRecords{Records: dst[:0]}
	rd := NewFieldReader(payload)
	for !rd.Done() {
		f, err := rd.Next()
		if err != nil {
			return ApRecords{}, err
		}
		switch {
		case f.Num == 1 && f.Type == varint.Varint:
			if err := readResp(rd, RespWifiScanGetApRecords); err != nil {
				return ApRecords{}, err
			}
		case f.Num == 2 && f.Type == varint.Varint:
			v, err := rd.Uint(math.MaxUint32)
			if err != nil {
				return ApRecords{}, err
			}
			out.Number = uint32(v)
		case f.Num == 3 && f.Type == varint.LengthDelimited:
			body, err := rd.Bytes()
			if err != nil {
				return ApRecords{}, err
			}
			i := len(out.Records)
			if i == cap(out.Records) {
				return ApRecords{}, fmt.Errorf("%w: more than %d ap records", protocol.ErrCapacity, cap(out.Records))
			}
			out.Records = out.Records[:i+1]
			if err := ParseApRecord(body, &out.Records[i]); err != nil {
				return ApRecords{}, fmt.Errorf("ap record %d: %w", i, err)
			}
		default:
			if err := rd.Skip(f); err != nil {
				return ApRecords{}, err
			}
		}
	}
	return out, nil
}

// ParseApRecordResponse decodes a RespWifiScanGetApRecord body.
func ParseApRecordResponse(payload []byte, dst *ApRecord) error {
	found := false
	rd := NewFieldReader(payload)
	for !rd.Done() {
		f, err := rd.Next()
		if err != nil {
			return err
		}
		switch {
		case f.Num == 1 && f.Type == varint.Varint:
			if err := readResp(rd, RespWifiScanGetApRecord); err != nil {
				return err
			}
		case f.Num == 2 && f.Type == varint.LengthDelimited:
			body, err := rd.Bytes()
			if err != nil {
				return err
			}
			if err := ParseApRecord(body, dst); err != nil {
				return err
			}
			found = true
		default:
			if err := rd.Skip(f); err != nil {
				return err
			}
		}
	}
	if !found {
		return fmt.Errorf("%w: response without ap_record", protocol.ErrInvalidData)
	}
	return nil
}

// ParseApNum decodes a RespWifiScanGetApNum body.
func ParseApNum(payload []byte) (uint16, error) {
	var number uint16
	rd := NewFieldReader(payload)
	for !rd.Done() {
		f, err := rd.Next()
		if err != nil {
			return 0, err
		}
		switch {
		case f.Num == 1 && f.Type == varint.Varint:
			if err := readResp(rd, RespWifiScanGetApNum); err != nil {
				return 0, err
			}
		case f.Num == 2 && f.Type == varint.Varint:
			v, err := rd.Uint(math.MaxUint16)
			if err != nil {
				return 0, err
			}
			number = uint16(v)
		default:
			if err := rd.Skip(f); err != nil {
				return 0, err
			}
		}
	}
	return number, nil
}

func readResp(rd *FieldReader, id MsgID) error {
	code, err := rd.Int32()
	if err != nil {
		return err
	}
	if code != 0 {
		return &protocol.DeviceError{MsgID: uint16(id), Code: protocol.ErrorCode(uint32(code))}
	}
	return nil
}
