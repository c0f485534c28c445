package wecom

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

// testAESKey is a valid 43-character EncodingAESKey (base64 of 32 bytes
// with the trailing = stripped).
const testAESKey = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

func testCipher(t *testing.T) *Cipher {
	t.Helper()
	c, err := NewCipher(testAESKey, "corp1")
	if err != nil {
		t.Fatalf("NewCipher() error: %v", err)
	}
	return c
}

func TestNewCipherRejectsBadKey(t *testing.T) {
	t.Parallel()

	if _, err := NewCipher("tooshort", "corp1"); !errors.Is(err, ErrBadKey) {
		t.Errorf("short key error = %v, want ErrBadKey", err)
	}
	if _, err := NewCipher(strings.Repeat("!", 43), "corp1"); !errors.Is(err, ErrBadKey) {
		t.Errorf("non-base64 key error = %v, want ErrBadKey", err)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()

	c := testCipher(t)
	msg := []byte("<xml><MsgType><![CDATA[text]]></MsgType></xml>")

	blob, err := c.Encrypt(msg)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	got, err := c.Decrypt(blob)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if string(got) != string(msg) {
		t.Errorf("round trip = %q, want %q", got, msg)
	}
}

func TestEncryptRandomizesBlob(t *testing.T) {
	t.Parallel()

	c := testCipher(t)
	a, err := c.Encrypt([]byte("same message"))
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	b, err := c.Encrypt([]byte("same message"))
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	// The 16 random prefix bytes must make equal plaintexts encrypt
	// differently.
	if a == b {
		t.Error("identical blobs for repeated Encrypt of the same message")
	}
}

func TestDecryptRejectsWrongReceiver(t *testing.T) {
	t.Parallel()

	other, err := NewCipher(testAESKey, "corp2")
	if err != nil {
		t.Fatalf("NewCipher() error: %v", err)
	}
	blob, err := other.Encrypt([]byte("hello"))
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	c := testCipher(t)
	if _, err := c.Decrypt(blob); !errors.Is(err, ErrReceiverID) {
		t.Errorf("Decrypt() error = %v, want ErrReceiverID", err)
	}
}

func TestDecryptRejectsGarbage(t *testing.T) {
	t.Parallel()

	c := testCipher(t)

	tests := []struct {
		name string
		blob string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"empty", ""},
		{"not block aligned", base64.StdEncoding.EncodeToString([]byte("short"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := c.Decrypt(tt.blob); !errors.Is(err, ErrBadCiphertext) {
				t.Errorf("Decrypt(%q) error = %v, want ErrBadCiphertext", tt.blob, err)
			}
		})
	}
}

func TestDecryptRejectsBadPadding(t *testing.T) {
	t.Parallel()

	c := testCipher(t)

	// Encrypt a block of zeros directly, bypassing pkcs7Pad, so the
	// decrypted padding byte is invalid.
	key, _ := base64.StdEncoding.DecodeString(testAESKey + "=")
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("aes.NewCipher() error: %v", err)
	}
	raw := make([]byte, aes.BlockSize)
	out := make([]byte, aes.BlockSize)
	cipher.NewCBCEncrypter(block, key[:aes.BlockSize]).CryptBlocks(out, raw)

	if _, err := c.Decrypt(base64.StdEncoding.EncodeToString(out)); !errors.Is(err, ErrBadPadding) {
		t.Errorf("Decrypt() error = %v, want ErrBadPadding", err)
	}
}

func TestPKCS7RoundTrip(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 15, 16, 17, 31, 32} {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i)
		}
		padded := pkcs7Pad(data, aes.BlockSize)
		if len(padded)%aes.BlockSize != 0 {
			t.Errorf("len %d: padded length %d not block aligned", n, len(padded))
		}
		got, err := pkcs7Unpad(padded)
		if err != nil {
			t.Errorf("len %d: pkcs7Unpad() error: %v", n, err)
			continue
		}
		if len(got) != n {
			t.Errorf("len %d: round trip length %d", n, len(got))
		}
	}
}
