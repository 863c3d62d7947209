// Package wire frames persisted state blobs so corruption is detected before
// the codec ever sees the payload.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/cespare/xxhash/v2"
)

const (
	version   byte = 1
	kindState byte = 1
)

var (
	ErrCorrupt = errors.New("wire: corrupt state blob")
	magic4     = [...]byte{'R', 'W', 'N', 'D'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Frame: magic(4) | ver(1) | kind(1=state) | sum(u64 be, xxhash64 of payload) | plen(u32 be) | payload(plen)
func Encode(payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 8 + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindState)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], xxhash.Sum64(payload))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode validates the frame and checksum and returns the payload.
// Any violation — foreign bytes, truncation, trailing garbage, bit rot —
// comes back as ErrCorrupt.
func Decode(b []byte) ([]byte, error) {
	const hdr = 4 + 1 + 1 + 8 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version || b[5] != kindState {
		return nil, ErrCorrupt
	}
	sum := binary.BigEndian.Uint64(b[6:14])
	plen := binary.BigEndian.Uint32(b[14:hdr])
	if uint32(len(b)-hdr) != plen {
		return nil, ErrCorrupt
	}
	payload := b[hdr:]
	if xxhash.Sum64(payload) != sum {
		return nil, ErrCorrupt
	}
	return payload, nil
}
