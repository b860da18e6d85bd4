package zkif

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrDecode is returned when a circuit bundle or one of its sections
// cannot be decoded. It is fatal to the current action.
var ErrDecode = errors.New("malformed circuit bundle")

const (
	frameHeaderLen  = 4
	maxFramePayload = 1 << 30
)

// Frame prefixes payload with its length as 4 little-endian bytes. The
// same framing is used for bundle sections and for gadget bridge
// messages, so a producer can stream responses that concatenate into a
// valid buffer.
func Frame(payload []byte) []byte {
	out := make([]byte, frameHeaderLen+len(payload))
	binary.LittleEndian.PutUint32(out, uint32(len(payload)))
	copy(out[frameHeaderLen:], payload)
	return out
}

// SplitFrame consumes one size-prefixed frame from buf, returning its
// payload and the remaining bytes.
func SplitFrame(buf []byte) (payload, rest []byte, err error) {
	if len(buf) < frameHeaderLen {
		return nil, nil, fmt.Errorf("%w: truncated frame header (%d bytes)", ErrDecode, len(buf))
	}
	n := binary.LittleEndian.Uint32(buf)
	if n > maxFramePayload {
		return nil, nil, fmt.Errorf("%w: frame payload of %d bytes exceeds limit", ErrDecode, n)
	}
	if uint32(len(buf)-frameHeaderLen) < n {
		return nil, nil, fmt.Errorf("%w: truncated frame payload (want %d bytes, have %d)",
			ErrDecode, n, len(buf)-frameHeaderLen)
	}
	return buf[frameHeaderLen : frameHeaderLen+n], buf[frameHeaderLen+n:], nil
}
