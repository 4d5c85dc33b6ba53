package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Per-user token file (0600) with AES-GCM obfuscation. Not a replacement
// for an OS keychain but keeps tokens out of the plain-text config.

const fileName = "tokens.json"

// ErrNotFound is returned when no token is stored for a host.
var ErrNotFound = errors.New("secrets: no token stored")

type tokenFile struct {
	Tokens map[string]string `json:"tokens"` // host -> base64(ciphertext)
}

// Store keeps API tokens keyed by service host.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Default returns the store in the per-user config directory.
func Default() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return NewStore(filepath.Join(dir, "studydeck")), nil
}

// Save stores token for the host of baseURL.
func (s *Store) Save(baseURL, token string) error {
	host, err := hostKey(baseURL)
	if err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token required")
	}
	tf, err := s.load()
	if err != nil {
		return err
	}
	if tf.Tokens == nil {
		tf.Tokens = map[string]string{}
	}
	ct, err := encrypt([]byte(token))
	if err != nil {
		return err
	}
	tf.Tokens[host] = base64.StdEncoding.EncodeToString(ct)
	return s.save(tf)
}

// Token returns the stored token for the host of baseURL.
func (s *Store) Token(baseURL string) (string, error) {
	host, err := hostKey(baseURL)
	if err != nil {
		return "", err
	}
	tf, err := s.load()
	if err != nil {
		return "", err
	}
	enc, ok := tf.Tokens[host]
	if !ok {
		return "", ErrNotFound
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	pt, err := decrypt(raw)
	if err != nil {
		return "", fmt.Errorf("decrypt token: %w", err)
	}
	return string(pt), nil
}

// Delete removes the token for the host of baseURL. Deleting a missing
// token is not an error.
func (s *Store) Delete(baseURL string) error {
	host, err := hostKey(baseURL)
	if err != nil {
		return err
	}
	tf, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := tf.Tokens[host]; !ok {
		return nil
	}
	delete(tf.Tokens, host)
	return s.save(tf)
}

func (s *Store) path() string { return filepath.Join(s.dir, fileName) }

func (s *Store) load() (tokenFile, error) {
	var tf tokenFile
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return tokenFile{}, nil
		}
		return tf, err
	}
	if err := json.Unmarshal(data, &tf); err != nil {
		return tf, fmt.Errorf("parse %s: %w", fileName, err)
	}
	return tf, nil
}

func (s *Store) save(tf tokenFile) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path())
}

func hostKey(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("base url %q has no host", baseURL)
	}
	return strings.ToLower(u.Host), nil
}

func masterKey() []byte {
	base := fmt.Sprintf("studydeck-%s-%s", runtime.GOOS, os.Getenv("USER"))
	hash := sha256.Sum256([]byte(base))
	return hash[:]
}

func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func encrypt(plain []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
