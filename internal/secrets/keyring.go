// Package secrets keeps credentials in the pal .env file encrypted at rest
// with an age X25519 key stored next to it.
package secrets

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"

	"github.com/dohr-michael/pal/internal/config"
)

const (
	sealedPrefix = "ENC[age:"
	sealedSuffix = "]"
)

// ErrNotSealed is returned by Unseal for values that are not ENC[age:...] blobs.
var ErrNotSealed = errors.New("value is not sealed")

// KeyPath returns the default key file: $PAL_PATH/.age-key.
func KeyPath() string {
	return filepath.Join(config.PalPath(), ".age-key")
}

// Keyring seals and unseals values with a single age identity.
type Keyring struct {
	identity *age.X25519Identity
}

// LoadOrCreate reads the identity at path, generating one (mode 0600) if the
// file does not exist yet.
func LoadOrCreate(path string) (*Keyring, error) {
	kr, err := Load(path)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return kr, err
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generate age identity: %w", err)
	}

	content := fmt.Sprintf("# created by pal\n# public key: %s\n%s\n",
		identity.Recipient().String(), identity.String())

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create key directory: %w", err)
	}
	// O_EXCL so two concurrent creators cannot overwrite each other's key.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return Load(path)
		}
		return nil, fmt.Errorf("write age key: %w", err)
	}
	defer f.Close()
	if _, err := io.WriteString(f, content); err != nil {
		return nil, fmt.Errorf("write age key: %w", err)
	}
	return &Keyring{identity: identity}, nil
}

// Load reads an existing identity from path.
func Load(path string) (*Keyring, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open age key: %w", err)
	}
	defer f.Close()

	identities, err := age.ParseIdentities(f)
	if err != nil {
		return nil, fmt.Errorf("parse age identities: %w", err)
	}
	if len(identities) == 0 {
		return nil, fmt.Errorf("no identities found in %s", path)
	}

	id, ok := identities[0].(*age.X25519Identity)
	if !ok {
		return nil, fmt.Errorf("unexpected identity type in %s", path)
	}
	return &Keyring{identity: id}, nil
}

// Recipient returns the public half of the identity.
func (k *Keyring) Recipient() string {
	return k.identity.Recipient().String()
}

// Seal encrypts plaintext into an ENC[age:...] blob safe to store in .env.
func (k *Keyring) Seal(plaintext string) (string, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, k.identity.Recipient())
	if err != nil {
		return "", fmt.Errorf("age encrypt init: %w", err)
	}
	if _, err := io.WriteString(w, plaintext); err != nil {
		return "", fmt.Errorf("age encrypt write: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("age encrypt close: %w", err)
	}
	return sealedPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()) + sealedSuffix, nil
}

// Unseal decrypts an ENC[age:...] blob.
func (k *Keyring) Unseal(blob string) (string, error) {
	if !IsSealed(blob) {
		return "", ErrNotSealed
	}

	ciphertext, err := base64.StdEncoding.DecodeString(blob[len(sealedPrefix) : len(blob)-len(sealedSuffix)])
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), k.identity)
	if err != nil {
		return "", fmt.Errorf("age decrypt: %w", err)
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read decrypted: %w", err)
	}
	return string(plain), nil
}

// IsSealed reports whether s is an ENC[age:...] blob.
func IsSealed(s string) bool {
	return strings.HasPrefix(s, sealedPrefix) && strings.HasSuffix(s, sealedSuffix)
}
