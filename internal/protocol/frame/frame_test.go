package frame

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/danmuck/esphost/internal/protocol"
	"github.com/danmuck/esphost/internal/testutil/testlog"
)

func TestHeaderRoundTrip(t *testing.T) {
	testlog.Start(t)
	headers := []Header{
		{IfType: IfSerial, Length: 24, Offset: HeaderSize, Checksum: 0x0B2C, SeqNum: 7, PktType: PacketNone},
		{IfType: IfHci, IfNum: 0x0F, Flags: FlagMoreFragment, Length: 0xFFFF, Offset: HeaderSize, SeqNum: 0xFFFF, Throttle: ThrottlePauseSend, PktType: PacketHciEvent},
		{IfType: IfPrivate, IfNum: 3, Offset: HeaderSize, Throttle: ThrottlePermitSend, PktType: PacketPrivInit},
		{IfType: IfStation, Offset: HeaderSize, PktType: PacketSlaveEvent},
	}
	for _, h := range headers {
		b := EncodeHeader(h)
		got, err := DecodeHeader(b[:])
		if err != nil {
			t.Fatalf("decode %+v: %v", h, err)
		}
		if got != h {
			t.Fatalf("round trip mismatch: got=%+v want=%+v", got, h)
		}
	}
}

func TestEncodeHeaderLayout(t *testing.T) {
	testlog.Start(t)
	h := Header{
		IfType:   IfHci,
		IfNum:    2,
		Flags:    0x01,
		Length:   0x0102,
		Offset:   HeaderSize,
		Checksum: 0xA1B2,
		SeqNum:   0x0304,
		Throttle: ThrottlePauseSend,
		PktType:  PacketHciCommand,
	}
	want := []byte{0x24, 0x01, 0x02, 0x01, 0x0C, 0x00, 0xB2, 0xA1, 0x04, 0x03, 0x02, 0x01}
	got := EncodeHeader(h)
	if !bytes.Equal(got[:], want) {
		t.Fatalf("layout mismatch:\n got % X\nwant % X", got, want)
	}
}

func TestDecodeHeaderRejectsUnknownDiscriminators(t *testing.T) {
	testlog.Start(t)
	base := EncodeHeader(Header{IfType: IfSerial, Offset: HeaderSize})

	bad := base
	bad[0] = 0x09
	if _, err := DecodeHeader(bad[:]); !errors.Is(err, protocol.ErrInvalidData) {
		t.Fatalf("interface 9: expected ErrInvalidData, got %v", err)
	}

	bad = base
	bad[11] = 0x04
	if _, err := DecodeHeader(bad[:]); !errors.Is(err, protocol.ErrInvalidData) {
		t.Fatalf("hci kind on serial: expected ErrInvalidData, got %v", err)
	}

	bad = base
	bad[0] = byte(IfHci)
	bad[11] = 0x33
	if _, err := DecodeHeader(bad[:]); !errors.Is(err, protocol.ErrInvalidData) {
		t.Fatalf("slave event on hci: expected ErrInvalidData, got %v", err)
	}

	bad = base
	bad[10] = 0x03
	if _, err := DecodeHeader(bad[:]); !errors.Is(err, protocol.ErrInvalidData) {
		t.Fatalf("throttle 3: expected ErrInvalidData, got %v", err)
	}
	if err := (Header{IfType: IfSerial, Offset: HeaderSize, Throttle: 3}).Validate(); !errors.Is(err, protocol.ErrInvalidData) {
		t.Fatalf("validate throttle 3: expected ErrInvalidData, got %v", err)
	}

	if _, err := DecodeHeader(base[:11]); !errors.Is(err, protocol.ErrInvalidData) {
		t.Fatalf("short header: expected ErrInvalidData, got %v", err)
	}
}

func TestPrivInitIsDistinctFromSlaveEvent(t *testing.T) {
	testlog.Start(t)
	b := EncodeHeader(Header{IfType: IfPrivate, Offset: HeaderSize, PktType: PacketPrivInit})
	h, err := DecodeHeader(b[:])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.PktType != PacketPrivInit || h.PktType == PacketSlaveEvent {
		t.Fatalf("unexpected packet type 0x%02x", uint8(h.PktType))
	}
}

func TestChecksumIsWrappingSum(t *testing.T) {
	testlog.Start(t)
	if got := Checksum([]byte{0x01, 0x02, 0xFF}); got != 0x0102 {
		t.Fatalf("checksum=0x%04x", got)
	}
	big := bytes.Repeat([]byte{0xFF}, 300)
	want := uint16((300 * 0xFF) & 0xFFFF)
	if got := Checksum(big); got != want {
		t.Fatalf("checksum=0x%04x want 0x%04x", got, want)
	}
	if Checksum(big) != Checksum(big) {
		t.Fatalf("checksum must be deterministic")
	}
}

func TestSealPatchesChecksumLast(t *testing.T) {
	testlog.Start(t)
	buf := make([]byte, 64)
	payload := []byte{0x08, 0x01, 0x10, 0x9E, 0x02}
	copy(buf[HeaderSize:], payload)
	h, err := NewHeader(NewSeqCounter(5), IfSerial, PacketNone)
	if err != nil {
		t.Fatalf("new header: %v", err)
	}
	n, err := Seal(buf, h, len(payload))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if n != HeaderSize+len(payload) {
		t.Fatalf("frame length=%d", n)
	}

	stored := uint16(buf[6]) | uint16(buf[7])<<8
	zeroed := append([]byte(nil), buf[:n]...)
	zeroed[6], zeroed[7] = 0, 0
	if stored != Checksum(zeroed) {
		t.Fatalf("stored checksum 0x%04x does not cover zeroed frame 0x%04x", stored, Checksum(zeroed))
	}
	if err := VerifyChecksum(buf[:n]); err != nil {
		t.Fatalf("verify: %v", err)
	}

	f, err := Parse(buf[:n], true)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Header.SeqNum != 5 || f.Header.Length != uint16(len(payload)) || !bytes.Equal(f.Payload, payload) {
		t.Fatalf("unexpected frame: %+v", f)
	}
}

func TestVerifyChecksumDetectsCorruption(t *testing.T) {
	testlog.Start(t)
	buf := make([]byte, 32)
	h, _ := NewHeader(nil, IfStation, PacketNone)
	n, err := Build(buf, h, []byte("abc"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	buf[n-1] ^= 0x40
	if err := VerifyChecksum(buf[:n]); !errors.Is(err, protocol.ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
	if _, err := Parse(buf[:n], true); !errors.Is(err, protocol.ErrChecksumMismatch) {
		t.Fatalf("parse: expected ErrChecksumMismatch, got %v", err)
	}
	if _, err := Parse(buf[:n], false); err != nil {
		t.Fatalf("unverified parse should pass: %v", err)
	}
}

func TestBuildCapacity(t *testing.T) {
	testlog.Start(t)
	h, _ := NewHeader(nil, IfSerial, PacketNone)
	if _, err := Build(make([]byte, 14), h, []byte{1, 2, 3}); !errors.Is(err, protocol.ErrCapacity) {
		t.Fatalf("expected ErrCapacity, got %v", err)
	}
	if _, err := Seal(make([]byte, 8), h, 0); !errors.Is(err, protocol.ErrCapacity) {
		t.Fatalf("expected ErrCapacity, got %v", err)
	}
}

func TestParseRejectsBadOffsetAndOverrun(t *testing.T) {
	testlog.Start(t)
	hb := EncodeHeader(Header{IfType: IfSerial, Offset: 16, Length: 0})
	if _, err := Parse(hb[:], false); !errors.Is(err, protocol.ErrInvalidData) {
		t.Fatalf("offset 16: expected ErrInvalidData, got %v", err)
	}
	hb = EncodeHeader(Header{IfType: IfSerial, Offset: HeaderSize, Length: 4})
	buf := append(hb[:], 0x01, 0x02)
	if _, err := Parse(buf, false); !errors.Is(err, protocol.ErrInvalidData) {
		t.Fatalf("overrun: expected ErrInvalidData, got %v", err)
	}
}

func TestNewHeaderRejectsUnsendableInterfaces(t *testing.T) {
	testlog.Start(t)
	if _, err := NewHeader(nil, IfInvalid, PacketNone); !errors.Is(err, protocol.ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
	if _, err := NewHeader(nil, IfHci, PacketNone); !errors.Is(err, protocol.ErrInvalidData) {
		t.Fatalf("hci without packet kind: expected ErrInvalidData, got %v", err)
	}
}

func TestSeqCounterSharedAcrossSenders(t *testing.T) {
	testlog.Start(t)
	c := NewSeqCounter(0xFFF0)
	const senders, each = 4, 64
	seen := make(chan uint16, senders*each)
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				h, err := NewHeader(c, IfSerial, PacketNone)
				if err != nil {
					t.Errorf("new header: %v", err)
					return
				}
				seen <- h.SeqNum
			}
		}()
	}
	wg.Wait()
	close(seen)
	uniq := make(map[uint16]struct{})
	for s := range seen {
		if _, dup := uniq[s]; dup {
			t.Fatalf("duplicate sequence number %d", s)
		}
		uniq[s] = struct{}{}
	}
	if len(uniq) != senders*each {
		t.Fatalf("expected %d sequence numbers, got %d", senders*each, len(uniq))
	}
	if c.Peek() != uint16((0xFFF0+senders*each)&0xFFFF) {
		t.Fatalf("counter did not wrap: %d", c.Peek())
	}
}

func FuzzParse(f *testing.F) {
	h, _ := NewHeader(nil, IfSerial, PacketNone)
	buf := make([]byte, 32)
	n, _ := Build(buf, h, []byte{0x08, 0x02})
	f.Add(buf[:n])
	f.Add([]byte{0x04, 0, 0x0F, 0, 0x0C, 0})

	f.Fuzz(func(t *testing.T, data []byte) {
		fr, err := Parse(data, true)
		if err != nil {
			return
		}
		if fr.Len() > len(data) {
			t.Fatalf("frame overruns input: %d > %d", fr.Len(), len(data))
		}
	})
}
