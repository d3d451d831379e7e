package classfile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const maxEagerRead = 64 << 10

// BinaryReader reads big-endian class-file data and tracks the byte offset
// and the section currently being decoded, so failures can be attributed.
type BinaryReader struct {
	reader    *bufio.Reader
	bytesRead int64
	section   string
}

func NewBinaryReader(reader io.Reader) *BinaryReader {
	return &BinaryReader{
		reader:  bufio.NewReader(reader),
		section: SectionHeader,
	}
}

func (br *BinaryReader) BytesRead() int64 {
	return br.bytesRead
}

// Enter marks the start of a new structural section.
func (br *BinaryReader) Enter(section string) {
	br.section = section
}

func (br *BinaryReader) Section() string {
	return br.section
}

// Fail builds a DecodeError positioned at the current offset.
func (br *BinaryReader) Fail(err error, format string, args ...any) error {
	return &DecodeError{
		Section: br.section,
		Offset:  br.bytesRead,
		Err:     wrapf(err, format, args...),
	}
}

// ReadNBytes reads exactly n bytes and tracks position. Running out of input
// is a decode error; any other read failure is returned as-is.
func (br *BinaryReader) ReadNBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, br.Fail(ErrTruncated, "negative length %d", n)
	}
	if n > maxEagerRead {
		// Grow with the data actually present so a corrupt length cannot
		// force a huge allocation up front.
		var buf bytes.Buffer
		copied, err := io.CopyN(&buf, br.reader, int64(n))
		br.bytesRead += copied
		if err != nil {
			return nil, br.wrapReadErr(err, n-int(copied))
		}
		return buf.Bytes(), nil
	}
	buf := make([]byte, n)
	bytesRead, err := io.ReadFull(br.reader, buf)
	br.bytesRead += int64(bytesRead)
	if err != nil {
		return nil, br.wrapReadErr(err, n-bytesRead)
	}
	return buf, nil
}

func (br *BinaryReader) wrapReadErr(err error, wanted int) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return br.Fail(ErrTruncated, "need %d more bytes", wanted)
	}
	return fmt.Errorf("read failed at offset %d: %w", br.bytesRead, err)
}

// ReadU1 reads a single unsigned byte
func (br *BinaryReader) ReadU1() (uint8, error) {
	b, err := br.reader.ReadByte()
	if err != nil {
		return 0, br.wrapReadErr(err, 1)
	}
	br.bytesRead++
	return b, nil
}

// ReadU2 reads a 2-byte unsigned integer (big-endian)
func (br *BinaryReader) ReadU2() (uint16, error) {
	buf, err := br.ReadNBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf), nil
}

// ReadU4 reads a 4-byte unsigned integer (big-endian)
func (br *BinaryReader) ReadU4() (uint32, error) {
	buf, err := br.ReadNBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf), nil
}

// ReadU8 reads an 8-byte unsigned integer (big-endian)
func (br *BinaryReader) ReadU8() (uint64, error) {
	buf, err := br.ReadNBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf), nil
}

// AtEOF reports whether the stream has no more bytes.
func (br *BinaryReader) AtEOF() (bool, error) {
	_, err := br.reader.Peek(1)
	if err == io.EOF {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read failed at offset %d: %w", br.bytesRead, err)
	}
	return false, nil
}

// source is implemented by both the stream reader and bytesCursor so the
// attribute parser works for top-level and nested (Code) attributes alike.
// maxStreamPrealloc caps preallocation when the input length is unknown.
const maxStreamPrealloc = 64

type source interface {
	ReadU1() (uint8, error)
	ReadU2() (uint16, error)
	ReadU4() (uint32, error)
	ReadNBytes(n int) ([]byte, error)
	BytesRead() int64
	Fail(err error, format string, args ...any) error
}

var (
	_ source = (*BinaryReader)(nil)
	_ source = (*bytesCursor)(nil)
)

// bytesCursor decodes a structure that has already been read in full.
// Offsets reported in errors are absolute within the class file.
type bytesCursor struct {
	data    []byte
	pos     int
	base    int64
	section string
}

func newBytesCursor(data []byte, base int64, section string) *bytesCursor {
	return &bytesCursor{data: data, base: base, section: section}
}

func (c *bytesCursor) BytesRead() int64 {
	return c.base + int64(c.pos)
}

func (c *bytesCursor) Fail(err error, format string, args ...any) error {
	return &DecodeError{
		Section: c.section,
		Offset:  c.BytesRead(),
		Err:     wrapf(err, format, args...),
	}
}

func (c *bytesCursor) Remaining() int {
	return len(c.data) - c.pos
}

// prealloc bounds a slice capacity taken from an untrusted count by the
// number of elements of at least minSize bytes the input can still hold.
func prealloc(src source, n uint16, minSize int) int {
	limit := maxStreamPrealloc
	if c, ok := src.(*bytesCursor); ok {
		limit = c.Remaining() / minSize
	}
	return min(int(n), limit)
}

func (c *bytesCursor) need(n int) error {
	if n < 0 || c.Remaining() < n {
		return c.Fail(ErrTruncated, "need %d bytes, %d left", n, c.Remaining())
	}
	return nil
}

func (c *bytesCursor) ReadU1() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

func (c *bytesCursor) ReadU2() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *bytesCursor) ReadU4() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *bytesCursor) ReadNBytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	v := c.data[c.pos : c.pos+n]
	c.pos += n
	return v, nil
}
