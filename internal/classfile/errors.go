package classfile

import (
	"errors"
	"fmt"
)

var (
	ErrBadMagic           = errors.New("bad magic number")
	ErrUnsupportedVersion = errors.New("unsupported class file version")
	ErrTruncated          = errors.New("truncated class file")
	ErrBadConstant        = errors.New("invalid constant pool entry")
	ErrBadConstantRef     = errors.New("invalid constant pool reference")
	ErrBadInstruction     = errors.New("invalid instruction")
	ErrAttributeLength    = errors.New("attribute length mismatch")
	ErrMissingCode        = errors.New("missing or duplicate Code attribute")
	ErrBadDescriptor      = errors.New("invalid descriptor")
	ErrTrailingData       = errors.New("unexpected data after class file end")
)

// DecodeError is the single error surfaced for any structural inconsistency.
type DecodeError struct {
	Section string
	Offset  int64
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("classfile: %s at offset %d: %v", e.Section, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func wrapf(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...))
}
