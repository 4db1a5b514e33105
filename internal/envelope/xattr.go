package envelope

import (
	"fmt"

	"github.com/pkg/xattr"
)

// XattrName is the extended attribute that holds the packed header when the
// file body is raw ciphertext.
const XattrName = "user.modecrypt.header"

// WriteXattr stores the packed header in the XattrName attribute of "path".
func WriteXattr(path string, h *Header) error {
	return xattr.Set(path, XattrName, h.Pack())
}

// ReadXattr reads the header back from the XattrName attribute of "path".
func ReadXattr(path string) (*Header, error) {
	buf, err := xattr.Get(path, XattrName)
	if err != nil {
		return nil, err
	}
	h, n, err := Parse(buf)
	if err != nil {
		return nil, err
	}
	if n != len(buf) {
		return nil, fmt.Errorf("%w: %d trailing bytes in %s", ErrCorrupt, len(buf)-n, XattrName)
	}
	return h, nil
}
