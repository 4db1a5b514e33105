package cryptocore

import (
	"crypto/sha256"
	"fmt"
	"log"

	"golang.org/x/crypto/hkdf"
)

// HKDFInfo returns the HKDF info string for a mode and transform pair, so
// one master key never keys two different schemes with the same bytes.
func HKDFInfo(mode string, transform string) string {
	return fmt.Sprintf("modecrypt %s %s", mode, transform)
}

// HKDFDerive derives "outLen" bytes from "masterkey" and "info" using
// HKDF-SHA256.
// It returns the derived bytes or panics.
func HKDFDerive(masterkey []byte, info string, outLen int) (out []byte) {
	h := hkdf.New(sha256.New, masterkey, nil, []byte(info))
	out = make([]byte, outLen)
	n, err := h.Read(out)
	if n != outLen || err != nil {
		log.Panicf("HKDFDerive: hkdf read failed, got %d bytes, error: %v", n, err)
	}
	return out
}
