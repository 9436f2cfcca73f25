package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/okolodev/credvault/internal/common"
)

const (
	ivSize    = 16
	nonceSize = 12

	// aeadPrefix tags blobs produced by the authenticated (AES-GCM) path.
	// Legacy blobs carry no tag and decode through the CBC path.
	aeadPrefix = "v2:"
)

// Cipher encrypts and decrypts credential secrets under the process-wide
// master key. The zero value is unusable; construct with NewCipher.
//
// Wire format (legacy, the default): "<iv_hex>:<ciphertext_hex>" where the
// IV is 16 bytes of fresh randomness per call and the ciphertext is
// AES-256-CBC with PKCS#7 padding. CBC provides no integrity check: a
// tampered blob may decrypt to garbage without error, or fail on padding.
//
// Wire format (authenticated): "v2:<nonce_hex>:<ciphertext_hex>", AES-GCM.
// Decrypt dispatches on the tag, so both formats can coexist in one store.
type Cipher struct {
	key []byte
}

// NewCipher returns a Cipher bound to the given master key. The key must be
// exactly KeySize bytes (see NormalizeKey).
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", common.ErrCrypto, KeySize, len(key))
	}
	return &Cipher{key: key}, nil
}

// Encrypt encrypts plaintext into the legacy "<iv_hex>:<ciphertext_hex>"
// format with a fresh random IV. It never returns partial output.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	padded := padPKCS7([]byte(plaintext), block.BlockSize())
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// EncryptAEAD encrypts plaintext with AES-GCM into the version-tagged
// "v2:<nonce_hex>:<ciphertext_hex>" format. Unlike the legacy format, the
// result is integrity-protected: any tampering fails Decrypt.
func (c *Cipher) EncryptAEAD(plaintext string) (string, error) {
	aead, err := c.newGCM()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	ciphertext := aead.Seal(nil, nonce, []byte(plaintext), nil)
	return aeadPrefix + hex.EncodeToString(nonce) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt recovers the plaintext from a blob in either wire format.
// Malformed blobs (missing separator, invalid hex, wrong segment sizes) and
// cipher rejections (bad padding, failed GCM tag) return common.ErrCrypto.
func (c *Cipher) Decrypt(blob string) (string, error) {
	if rest, ok := strings.CutPrefix(blob, aeadPrefix); ok {
		return c.decryptAEAD(rest)
	}
	return c.decryptCBC(blob)
}

func (c *Cipher) decryptCBC(blob string) (string, error) {
	ivHex, ctHex, ok := strings.Cut(blob, ":")
	if !ok {
		return "", fmt.Errorf("%w: missing separator", common.ErrCrypto)
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != ivSize {
		return "", fmt.Errorf("%w: invalid iv segment", common.ErrCrypto)
	}
	ciphertext, err := hex.DecodeString(ctHex)
	if err != nil {
		return "", fmt.Errorf("%w: invalid ciphertext segment", common.ErrCrypto)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return "", fmt.Errorf("%w: ciphertext is not block-aligned", common.ErrCrypto)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := unpadPKCS7(plaintext, block.BlockSize())
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

func (c *Cipher) decryptAEAD(blob string) (string, error) {
	nonceHex, ctHex, ok := strings.Cut(blob, ":")
	if !ok {
		return "", fmt.Errorf("%w: missing separator", common.ErrCrypto)
	}

	nonce, err := hex.DecodeString(nonceHex)
	if err != nil || len(nonce) != nonceSize {
		return "", fmt.Errorf("%w: invalid nonce segment", common.ErrCrypto)
	}
	ciphertext, err := hex.DecodeString(ctHex)
	if err != nil {
		return "", fmt.Errorf("%w: invalid ciphertext segment", common.ErrCrypto)
	}

	aead, err := c.newGCM()
	if err != nil {
		return "", err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	return string(plaintext), nil
}

func (c *Cipher) newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	return aead, nil
}

func padPKCS7(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func unpadPKCS7(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: invalid padded length", common.ErrCrypto)
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("%w: bad padding", common.ErrCrypto)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: bad padding", common.ErrCrypto)
		}
	}
	return data[:len(data)-n], nil
}
