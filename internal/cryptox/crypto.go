// Package cryptox hashes and verifies account passwords with argon2id.
//
// A stored hash has the PHC-like form
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// with salt and key encoded as unpadded standard base64. Every hash gets its
// own random salt; the server-wide pepper is mixed into the password before
// derivation and is never stored.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

// ErrMalformedHash is returned when a stored hash cannot be parsed.
var ErrMalformedHash = errors.New("malformed password hash")

const (
	saltLen = 16
	keyLen  = 32
)

// PasswordHasher holds the argon2id cost parameters and the pepper.
type PasswordHasher struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	Pepper  []byte
}

// NewPasswordHasher returns a hasher with the default cost (1 pass, 64 MiB, 4 lanes).
func NewPasswordHasher(pepper string) *PasswordHasher {
	return &PasswordHasher{Time: 1, Memory: 64 * 1024, Threads: 4, Pepper: []byte(pepper)}
}

// Hash derives an encoded hash for password using a fresh random salt.
func (h *PasswordHasher) Hash(password string) string {
	salt := common.GenerateRandByteArray(saltLen)
	key := h.derive(password, salt, h.Time, h.Memory, h.Threads)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.Memory, h.Time, h.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
}

// Verify reports whether password matches encoded. The cost parameters are
// read from encoded, so hashes survive a change of the hasher's defaults.
func (h *PasswordHasher) Verify(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrMalformedHash
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedHash
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false, ErrMalformedHash
	}

	got := h.derive(password, salt, time, memory, threads)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func (h *PasswordHasher) derive(password string, salt []byte, time, memory uint32, threads uint8) []byte {
	input := make([]byte, 0, len(password)+len(h.Pepper))
	input = append(input, password...)
	input = append(input, h.Pepper...)
	defer wipe(input)

	return argon2.IDKey(input, salt, time, memory, threads, keyLen)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
