package watermark

import (
	"bytes"
	"crypto/aes"
	"crypto/sha1"
	"encoding/base64"

	"github.com/deepnoodle-ai/radon/errz"
)

// deriveKey returns the AES-128 key for a passphrase: the first 16 bytes
// of its SHA-1 digest.
func deriveKey(key string) []byte {
	sum := sha1.Sum([]byte(key))
	return sum[:aes.BlockSize]
}

// Encrypt encrypts plaintext with AES-128 in ECB mode with PKCS#5 padding
// and returns it in standard Base64.
func Encrypt(plaintext, key string) (string, error) {
	block, err := aes.NewCipher(deriveKey(key))
	if err != nil {
		return "", err
	}
	pad := aes.BlockSize - len(plaintext)%aes.BlockSize
	data := append([]byte(plaintext), bytes.Repeat([]byte{byte(pad)}, pad)...)
	for i := 0; i < len(data); i += aes.BlockSize {
		block.Encrypt(data[i:i+aes.BlockSize], data[i:i+aes.BlockSize])
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decrypt reverses Encrypt. It fails with an errz.ErrDecrypt error when
// the payload is not Base64, is not a whole number of blocks or has bad
// padding.
func Decrypt(payload, key string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", errz.NewStructuredErrorf(errz.ErrDecrypt, -1, "payload is not base64").WithCause(err)
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", errz.NewStructuredErrorf(errz.ErrDecrypt, -1, "payload length %d is not a multiple of the block size", len(data))
	}
	block, err := aes.NewCipher(deriveKey(key))
	if err != nil {
		return "", err
	}
	for i := 0; i < len(data); i += aes.BlockSize {
		block.Decrypt(data[i:i+aes.BlockSize], data[i:i+aes.BlockSize])
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > aes.BlockSize {
		return "", errz.NewStructuredErrorf(errz.ErrDecrypt, -1, "bad padding")
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return "", errz.NewStructuredErrorf(errz.ErrDecrypt, -1, "bad padding")
		}
	}
	return string(data[:len(data)-pad]), nil
}
