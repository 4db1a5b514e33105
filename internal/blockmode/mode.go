package blockmode

import (
	"fmt"
	"strings"
)

// Mode selects how blocks are chained.
type Mode int

const (
	_ = iota // Skip zero
	// ModeECB transforms every block independently. Identical plaintext
	// blocks give identical ciphertext blocks.
	ModeECB Mode = iota
	// ModeCBC XORs every plaintext block with the previous ciphertext block
	// (the IV for the first one) before transforming it.
	ModeCBC Mode = iota
	// ModeCTR XORs the data with the transformed counter sequence
	// IV, IV+1, IV+2, ...
	ModeCTR Mode = iota
	// ModeEME is the ECB-Mix-ECB wide-block mode. The IV is the tweak.
	// Needs a 16-byte block size and at most 128 blocks.
	ModeEME Mode = iota
)

const (
	// emeBlockSize is the only block size EME supports.
	emeBlockSize = 16
	// emeMaxBlocks is the largest message EME can handle, in blocks.
	emeMaxBlocks = 128
)

var modeNames = map[Mode]string{
	ModeECB: "ecb",
	ModeCBC: "cbc",
	ModeCTR: "ctr",
	ModeEME: "eme",
}

// Modes returns all supported modes in ascending order.
func Modes() []Mode {
	return []Mode{ModeECB, ModeCBC, ModeCTR, ModeEME}
}

func (m Mode) String() string {
	if n, ok := modeNames[m]; ok {
		return n
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode turns "ecb", "CBC", ... into a Mode.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, s)
}

// Valid tells if "m" is one of the supported modes.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// NeedsIV tells if the mode requires an IV of exactly one block.
func (m Mode) NeedsIV() bool {
	return m == ModeCBC || m == ModeCTR || m == ModeEME
}

// Parallel tells whether the blocks of one message can be processed
// concurrently in the given direction. CBC encryption is the only
// strictly sequential case. EME mixes all blocks and runs as one unit.
func (m Mode) Parallel(decrypt bool) bool {
	switch m {
	case ModeECB, ModeCTR:
		return true
	case ModeCBC:
		return decrypt
	}
	return false
}
