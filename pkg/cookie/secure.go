package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

type keys struct {
	sign []byte
	aead cipher.AEAD
}

// deriveKeys splits the secret into independent signing and encryption keys.
func deriveKeys(secret []byte) *keys {
	derive := func(label string) []byte {
		mac := hmac.New(sha256.New, secret)
		mac.Write([]byte(label))
		return mac.Sum(nil)
	}
	block, err := aes.NewCipher(derive("sitegear cookie encryption"))
	if err != nil {
		panic(err) // 32-byte key is always valid
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		panic(err)
	}
	return &keys{sign: derive("sitegear cookie signing"), aead: aead}
}

var b64 = base64.RawURLEncoding

// SetSigned writes value with an HMAC bound to the cookie name.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge int) error {
	if m.keys == nil {
		return ErrNoSecret
	}
	encoded := b64.EncodeToString([]byte(value)) + "." + b64.EncodeToString(m.sign(name, []byte(value)))
	return m.write(w, name, encoded, maxAge)
}

// GetSigned returns the value of a signed cookie.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if m.keys == nil {
		return "", ErrNoSecret
	}
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}

	v, s, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrBadSig
	}
	value, err := b64.DecodeString(v)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := b64.DecodeString(s)
	if err != nil || !hmac.Equal(sig, m.sign(name, value)) {
		return "", ErrBadSig
	}
	return string(value), nil
}

// SetEncrypted writes value encrypted with AES-GCM. The cookie name is
// authenticated, so a value cannot be replayed under another name.
func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, maxAge int) error {
	if m.keys == nil {
		return ErrNoSecret
	}
	nonce := make([]byte, m.keys.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	sealed := m.keys.aead.Seal(nonce, nonce, []byte(value), []byte(name))
	return m.write(w, name, b64.EncodeToString(sealed), maxAge)
}

// GetEncrypted returns the plaintext of an encrypted cookie.
func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	if m.keys == nil {
		return "", ErrNoSecret
	}
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	data, err := b64.DecodeString(raw)
	if err != nil {
		return "", ErrDecrypt
	}
	ns := m.keys.aead.NonceSize()
	if len(data) < ns {
		return "", ErrDecrypt
	}
	plain, err := m.keys.aead.Open(nil, data[:ns], data[ns:], []byte(name))
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

// SetValue stores v as encrypted JSON.
func (m *Manager) SetValue(w http.ResponseWriter, name string, v any, maxAge int) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return m.SetEncrypted(w, name, string(data), maxAge)
}

// Value decodes an encrypted JSON cookie into dest.
func (m *Manager) Value(r *http.Request, name string, dest any) error {
	raw, err := m.GetEncrypted(r, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return errors.Join(ErrDecrypt, err)
	}
	return nil
}

const flashPrefix = "flash_"

// SetFlash stores a one-time value read by Flash.
func (m *Manager) SetFlash(w http.ResponseWriter, key string, value any) error {
	return m.SetValue(w, flashPrefix+key, value, 0)
}

// Flash reads a value stored by SetFlash and deletes the cookie.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, key string, dest any) error {
	name := flashPrefix + key
	if err := m.Value(r, name, dest); err != nil {
		return err
	}
	m.Delete(w, name)
	return nil
}

func (m *Manager) sign(name string, value []byte) []byte {
	mac := hmac.New(sha256.New, m.keys.sign)
	mac.Write([]byte(name))
	mac.Write([]byte{0})
	mac.Write(value)
	return mac.Sum(nil)
}

func (m *Manager) write(w http.ResponseWriter, name, encoded string, maxAge int) error {
	if len(encoded) > maxValueLen {
		return ErrTooLarge
	}
	http.SetCookie(w, m.cookie(name, encoded, maxAge))
	return nil
}
