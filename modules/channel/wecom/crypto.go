package wecom

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
)

// Callback crypto errors.
var (
	ErrBadKey        = errors.New("wecom: invalid aes key")
	ErrBadCiphertext = errors.New("wecom: invalid ciphertext")
	ErrBadPadding    = errors.New("wecom: invalid padding")
	ErrReceiverID    = errors.New("wecom: receiver id mismatch")
)

// Cipher implements the WeCom callback encryption scheme: AES-256-CBC with
// the IV taken from the first 16 key bytes, PKCS#7 padding, and a plaintext
// layout of random(16) ‖ msg_len(4, big-endian) ‖ msg ‖ receiver_id.
type Cipher struct {
	key    []byte
	corpID string
}

// NewCipher builds a Cipher from the 43-character EncodingAESKey issued by
// the WeCom console. The key decodes to 32 bytes after restoring the
// stripped base64 padding character.
func NewCipher(encodingAESKey, corpID string) (*Cipher, error) {
	if len(encodingAESKey) != 43 {
		return nil, fmt.Errorf("%w: want 43 characters, got %d", ErrBadKey, len(encodingAESKey))
	}
	key, err := base64.StdEncoding.DecodeString(encodingAESKey + "=")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadKey, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: decodes to %d bytes, want 32", ErrBadKey, len(key))
	}
	return &Cipher{key: key, corpID: corpID}, nil
}

// Decrypt decodes and decrypts a base64 Encrypt blob and returns the inner
// message bytes. The receiver id appended to the plaintext must match the
// configured corp id, otherwise the message was encrypted for someone else.
func (c *Cipher) Decrypt(encoded string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrBadCiphertext, err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: length %d not a block multiple", ErrBadCiphertext, len(ciphertext))
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, c.key[:aes.BlockSize]).CryptBlocks(plaintext, ciphertext)

	plaintext, err = pkcs7Unpad(plaintext)
	if err != nil {
		return nil, err
	}

	// random(16) ‖ msg_len(4) ‖ msg ‖ receiver_id
	if len(plaintext) < 20 {
		return nil, fmt.Errorf("%w: plaintext too short", ErrBadCiphertext)
	}
	msgLen := binary.BigEndian.Uint32(plaintext[16:20])
	if int(msgLen) > len(plaintext)-20 {
		return nil, fmt.Errorf("%w: declared length %d exceeds payload", ErrBadCiphertext, msgLen)
	}

	msg := plaintext[20 : 20+msgLen]
	receiver := string(plaintext[20+msgLen:])
	if receiver != c.corpID {
		return nil, fmt.Errorf("%w: got %q", ErrReceiverID, receiver)
	}

	return msg, nil
}

// Encrypt wraps msg in the callback plaintext layout, encrypts it, and
// returns the base64 blob.
func (c *Cipher) Encrypt(msg []byte) (string, error) {
	random := make([]byte, 16)
	if _, err := rand.Read(random); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.Write(random)
	var lenBytes [4]byte
	binary.BigEndian.PutUint32(lenBytes[:], uint32(len(msg)))
	buf.Write(lenBytes[:])
	buf.Write(msg)
	buf.WriteString(c.corpID)

	plaintext := pkcs7Pad(buf.Bytes(), aes.BlockSize)

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, c.key[:aes.BlockSize]).CryptBlocks(ciphertext, plaintext)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrBadPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, ErrBadPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrBadPadding
		}
	}
	return data[:len(data)-n], nil
}
