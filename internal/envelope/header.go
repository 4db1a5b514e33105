// Package envelope stores the parameters needed for decryption next to the
// ciphertext: mode, transform, block size, IV and the original plaintext
// length. Zero padding cannot be undone without the original length.
package envelope

// Header format, all integers big endian:
//
//	[ "MCRY" ] [ Version uint16 ] [ Mode uint8 ] [ name length uint8 ] [ Transform name ]
//	[ BlockSize uint16 ] [ OriginalLength uint64 ] [ IV length uint16 ] [ IV ]

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"log"

	"github.com/modecrypt/modecrypt/internal/blockmode"
)

const (
	// CurrentVersion is the current header format version
	CurrentVersion = 1

	magic = "MCRY"
	// Length of the header without the transform name and the IV
	fixedLen = len(magic) + 2 + 1 + 1 + 2 + 8 + 2
	// maxNameLen is limited by the uint8 length field
	maxNameLen = 255
	// MaxOriginalLength keeps the length within int on all platforms
	MaxOriginalLength = 1<<31 - 1
	// MaxBlockSize is limited by the uint16 block size field. The IV has
	// the block size, so its length field cannot overflow either.
	MaxBlockSize = 0xffff
)

// ErrCorrupt is returned for anything that does not parse as a header.
var ErrCorrupt = errors.New("envelope header corrupt")

// Header describes one encrypted message.
type Header struct {
	Version        uint16
	Mode           blockmode.Mode
	Transform      string
	BlockSize      int
	OriginalLength uint64
	// IV is empty for modes that do not use one
	IV []byte
}

// NewHeader returns a header of the current version.
func NewHeader(mode blockmode.Mode, transform string, blockSize int, originalLength int, iv []byte) *Header {
	return &Header{
		Version:        CurrentVersion,
		Mode:           mode,
		Transform:      transform,
		BlockSize:      blockSize,
		OriginalLength: uint64(originalLength),
		IV:             iv,
	}
}

// Len returns the packed length of the header.
func (h *Header) Len() int {
	return fixedLen + len(h.Transform) + len(h.IV)
}

// CiphertextLen returns the ciphertext length the header implies.
func (h *Header) CiphertextLen() int {
	return blockmode.PaddedLen(int(h.OriginalLength), h.BlockSize)
}

// Pack serializes the header.
func (h *Header) Pack() []byte {
	if h.Version != CurrentVersion || len(h.Transform) == 0 || len(h.Transform) > maxNameLen ||
		h.BlockSize <= 0 || h.BlockSize > MaxBlockSize || len(h.IV) > MaxBlockSize || h.OriginalLength > MaxOriginalLength {
		log.Panicf("Header object not properly initialized: %+v", h)
	}
	var buf bytes.Buffer
	buf.Grow(h.Len())
	buf.WriteString(magic)
	binary.Write(&buf, binary.BigEndian, h.Version)
	buf.WriteByte(byte(h.Mode))
	buf.WriteByte(byte(len(h.Transform)))
	buf.WriteString(h.Transform)
	binary.Write(&buf, binary.BigEndian, uint16(h.BlockSize))
	binary.Write(&buf, binary.BigEndian, h.OriginalLength)
	binary.Write(&buf, binary.BigEndian, uint16(len(h.IV)))
	buf.Write(h.IV)
	return buf.Bytes()
}

// Parse parses the header at the start of "buf". It returns the header and
// the number of bytes it occupies.
func Parse(buf []byte) (*Header, int, error) {
	if len(buf) < fixedLen {
		return nil, 0, fmt.Errorf("%w: have %d bytes, need at least %d", ErrCorrupt, len(buf), fixedLen)
	}
	if string(buf[:len(magic)]) != magic {
		return nil, 0, fmt.Errorf("%w: bad magic %q", ErrCorrupt, buf[:len(magic)])
	}
	off := len(magic)
	var h Header
	h.Version = binary.BigEndian.Uint16(buf[off:])
	off += 2
	if h.Version != CurrentVersion {
		return nil, 0, fmt.Errorf("%w: invalid version: got %d, want %d", ErrCorrupt, h.Version, CurrentVersion)
	}
	h.Mode = blockmode.Mode(buf[off])
	off++
	nameLen := int(buf[off])
	off++
	// Everything after the name is fixed-size except the IV
	if len(buf) < fixedLen+nameLen {
		return nil, 0, fmt.Errorf("%w: truncated transform name", ErrCorrupt)
	}
	h.Transform = string(buf[off : off+nameLen])
	off += nameLen
	h.BlockSize = int(binary.BigEndian.Uint16(buf[off:]))
	off += 2
	h.OriginalLength = binary.BigEndian.Uint64(buf[off:])
	off += 8
	ivLen := int(binary.BigEndian.Uint16(buf[off:]))
	off += 2
	if len(buf) < off+ivLen {
		return nil, 0, fmt.Errorf("%w: truncated IV: have %d bytes, need %d", ErrCorrupt, len(buf)-off, ivLen)
	}
	if ivLen > 0 {
		h.IV = append([]byte{}, buf[off:off+ivLen]...)
	}
	off += ivLen
	if nameLen == 0 || h.BlockSize == 0 {
		return nil, 0, fmt.Errorf("%w: empty transform name or zero block size", ErrCorrupt)
	}
	if !h.Mode.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown mode %d", ErrCorrupt, int(h.Mode))
	}
	if h.OriginalLength > MaxOriginalLength {
		return nil, 0, fmt.Errorf("%w: original length %d too large", ErrCorrupt, h.OriginalLength)
	}
	return &h, off, nil
}

// Seal returns the packed header followed by the ciphertext.
func Seal(h *Header, ciphertext []byte) []byte {
	out := h.Pack()
	return append(out, ciphertext...)
}

// Open splits "data" into header and ciphertext and checks that the
// ciphertext length matches the header.
func Open(data []byte) (*Header, []byte, error) {
	h, n, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}
	ciphertext := data[n:]
	if len(ciphertext) != h.CiphertextLen() {
		return nil, nil, fmt.Errorf("%w: ciphertext length %d, header says %d",
			ErrCorrupt, len(ciphertext), h.CiphertextLen())
	}
	return h, ciphertext, nil
}
