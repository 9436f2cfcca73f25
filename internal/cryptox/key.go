// Package cryptox implements the credential protection layer: master key
// normalization and symmetric encryption of stored secrets.
package cryptox

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/okolodev/credvault/internal/common"
)

// KeySize is the master key length in bytes (AES-256).
const KeySize = 32

// keyFiller pads short operator secrets up to KeySize.
const keyFiller = '0'

// NormalizeKey derives the process-wide master key from an operator-supplied
// secret. The secret is stripped of all whitespace, NFKC-normalized, then
// right-padded with '0' to exactly 32 bytes or truncated to the first 32
// bytes. The result is deterministic for a given input.
//
// Padding short secrets reduces effective key entropy; secrets shorter than
// 32 bytes yield a weaker key than the cipher suggests. This is a documented
// compatibility trade-off, not validated away here.
//
// An empty or whitespace-only secret returns common.ErrConfiguration and is
// fatal to startup.
func NormalizeKey(rawSecret string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, rawSecret)
	cleaned = norm.NFKC.String(cleaned)

	if cleaned == "" {
		return nil, fmt.Errorf("%w: encryption key is not set", common.ErrConfiguration)
	}

	key := []byte(cleaned)
	if len(key) >= KeySize {
		return key[:KeySize], nil
	}

	padded := make([]byte, KeySize)
	copy(padded, key)
	for i := len(key); i < KeySize; i++ {
		padded[i] = keyFiller
	}
	return padded, nil
}
