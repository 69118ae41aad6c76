package rpc

import (
	"fmt"

	"github.com/danmuck/esphost/internal/protocol"
	"github.com/danmuck/esphost/internal/protocol/varint"
	"google.golang.org/protobuf/encoding/protowire"
)

// inflatedLen is the wire size of a negative value sign-extended to 64 bits.
const inflatedLen = varint.MaxLen

// Field is one decoded tag.
type Field struct {
	Num  uint32
	Type varint.WireType
}

// FieldReader walks protobuf fields in a borrowed buffer. Every read advances
// by at least one byte or fails, so a walk always terminates.
type FieldReader struct {
	buf []byte
	pos int
}

func NewFieldReader(buf []byte) *FieldReader {
	return &FieldReader{buf: buf}
}

func (r *FieldReader) Pos() int       { return r.pos }
func (r *FieldReader) Remaining() int { return len(r.buf) - r.pos }
func (r *FieldReader) Done() bool     { return r.pos >= len(r.buf) }

// Next reads the next tag.
func (r *FieldReader) Next() (Field, error) {
	if r.Done() {
		return Field{}, fmt.Errorf("%w: expected tag at end of buffer", protocol.ErrInvalidData)
	}
	num, wt, n, err := varint.ConsumeTag(r.buf[r.pos:])
	if err != nil {
		return Field{}, err
	}
	r.pos += n
	return Field{Num: num, Type: wt}, nil
}

func (r *FieldReader) Varint() (uint64, error) {
	v, n, err := varint.Decode(r.buf[r.pos:])
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}

// Uint reads a varint that must fit in max.
func (r *FieldReader) Uint(max uint64) (uint64, error) {
	v, err := r.Varint()
	if err != nil {
		return 0, err
	}
	if v > max {
		return 0, fmt.Errorf("%w: value %d exceeds %d", protocol.ErrInvalidData, v, max)
	}
	return v, nil
}

// Int32 reads a standard protobuf int32, where negatives are sign-extended.
func (r *FieldReader) Int32() (int32, error) {
	v, err := r.Varint()
	if err != nil {
		return 0, err
	}
	return int32(int64(v)), nil
}

// Int8Inflated reads a signed byte the co-processor sends without zigzag.
// A negative value arrives sign-extended to ten bytes; its first byte is the
// value and the other nine are skipped unread. A first byte without the
// continuation bit is a plain one-byte varint.
func (r *FieldReader) Int8Inflated() (int8, error) {
	if r.Done() {
		return 0, fmt.Errorf("%w: signed byte at end of buffer", protocol.ErrInvalidData)
	}
	b := r.buf[r.pos]
	if b&0x80 == 0 {
		r.pos++
		return int8(b), nil
	}
	if r.Remaining() < inflatedLen {
		return 0, fmt.Errorf("%w: inflated signed byte needs %d bytes, have %d", protocol.ErrInvalidData, inflatedLen, r.Remaining())
	}
	r.pos += inflatedLen
	return int8(b), nil
}

// Bytes reads a length-delimited value. The result borrows from the buffer.
func (r *FieldReader) Bytes() ([]byte, error) {
	l, n, err := varint.Decode(r.buf[r.pos:])
	if err != nil {
		return nil, err
	}
	if l > uint64(r.Remaining()-n) {
		return nil, fmt.Errorf("%w: length %d overruns %d bytes", protocol.ErrInvalidData, l, r.Remaining()-n)
	}
	start := r.pos + n
	r.pos = start + int(l)
	return r.buf[start:r.pos], nil
}

// CopyBytes reads a length-delimited value into dst.
func (r *FieldReader) CopyBytes(dst []byte) (int, error) {
	v, err := r.Bytes()
	if err != nil {
		return 0, err
	}
	if len(v) > len(dst) {
		return 0, fmt.Errorf("%w: field of %d bytes into %d byte buffer", protocol.ErrCapacity, len(v), len(dst))
	}
	return copy(dst, v), nil
}

// Skip discards the value of f.
func (r *FieldReader) Skip(f Field) error {
	n := protowire.ConsumeFieldValue(protowire.Number(f.Num), protowire.Type(f.Type), r.buf[r.pos:])
	if n < 0 {
		return fmt.Errorf("%w: skip field %d: %v", protocol.ErrInvalidData, f.Num, protowire.ParseError(n))
	}
	r.pos += n
	return nil
}

func (r *FieldReader) expectVarint(num uint32) (uint64, error) {
	f, err := r.Next()
	if err != nil {
		return 0, err
	}
	if f.Num != num || f.Type != varint.Varint {
		return 0, fmt.Errorf("%w: expected field %d varint, got field %d %s", protocol.ErrInvalidData, num, f.Num, f.Type)
	}
	return r.Varint()
}

// Writer appends protobuf fields into a fixed buffer. The first failure
// sticks and later writes are no-ops.
type Writer struct {
	buf []byte
	n   int
	err error
}

func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

func (w *Writer) Len() int        { return w.n }
func (w *Writer) Err() error      { return w.err }
func (w *Writer) Written() []byte { return w.buf[:w.n] }

// Raw writes a bare varint.
func (w *Writer) Raw(v uint64) {
	if w.err != nil {
		return
	}
	n, err := varint.Encode(w.buf[w.n:], v)
	if err != nil {
		w.err = err
		return
	}
	w.n += n
}

func (w *Writer) Tag(num uint32, wt varint.WireType) {
	w.Raw(varint.MakeTag(num, wt))
}

func (w *Writer) Varint(num uint32, v uint64) {
	w.Tag(num, varint.Varint)
	w.Raw(v)
}

// Int32 writes a standard protobuf int32.
func (w *Writer) Int32(num uint32, v int32) {
	w.Varint(num, uint64(int64(v)))
}

// Int8Inflated writes v the way the co-processor sends signed bytes:
// negatives sign-extended to ten bytes.
func (w *Writer) Int8Inflated(num uint32, v int8) {
	w.Varint(num, uint64(int64(v)))
}

func (w *Writer) Bytes(num uint32, v []byte) {
	w.Tag(num, varint.LengthDelimited)
	w.Raw(uint64(len(v)))
	if w.err != nil {
		return
	}
	if len(v) > len(w.buf)-w.n {
		w.err = fmt.Errorf("%w: field of %d bytes, %d left", protocol.ErrCapacity, len(v), len(w.buf)-w.n)
		return
	}
	w.n += copy(w.buf[w.n:], v)
}

// Message writes a nested message built by fn. fn runs twice: once to
// measure the body, then again behind its length prefix.
func (w *Writer) Message(num uint32, fn func(*Writer)) {
	if w.err != nil {
		return
	}
	sizer := &Writer{buf: w.buf[w.n:]}
	fn(sizer)
	if sizer.err != nil {
		w.err = sizer.err
		return
	}
	body := sizer.n
	w.Tag(num, varint.LengthDelimited)
	w.Raw(uint64(body))
	if w.err != nil {
		return
	}
	if body > len(w.buf)-w.n {
		w.err = fmt.Errorf("%w: nested message of %d bytes, %d left", protocol.ErrCapacity, body, len(w.buf)-w.n)
		return
	}
	nested := &Writer{buf: w.buf[w.n : w.n+body]}
	fn(nested)
	if nested.err != nil {
		w.err = nested.err
		return
	}
	w.n += nested.n
}
