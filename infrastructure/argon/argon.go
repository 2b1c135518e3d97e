// Package argon hashes admin passwords with argon2id in the PHC string format:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>
package argon

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrEmptyPassword       = errors.New("argon: password is required")
	ErrMalformedHash       = errors.New("argon: malformed hash")
	ErrIncompatibleVariant = errors.New("argon: hash is not argon2id")
	ErrIncompatibleVersion = errors.New("argon: unsupported argon2 version")
)

// Params are the argon2id cost settings stored alongside every hash.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Default is used for every new admin password.
var Default = Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

var b64 = base64.RawStdEncoding

// Hash encodes password with the Default parameters.
func Hash(password string) (string, error) {
	return HashWith(Default, password)
}

// HashWith encodes password with p and a fresh random salt.
func HashWith(p Params, password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", ErrEmptyPassword
	}
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("argon: read salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Iterations, p.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// Verify reports whether password matches encoded. A malformed hash is an
// error; a wrong password is (false, nil).
func Verify(password, encoded string) (bool, error) {
	d, err := decode(encoded)
	if err != nil {
		return false, err
	}
	key := argon2.IDKey([]byte(password), d.salt, d.params.Iterations, d.params.Memory, d.params.Parallelism, d.params.KeyLength)
	return subtle.ConstantTimeCompare(d.key, key) == 1, nil
}

// NeedsRehash reports whether encoded was produced with weaker or different
// settings than p. Unreadable hashes always need a rehash.
func NeedsRehash(encoded string, p Params) bool {
	d, err := decode(encoded)
	if err != nil {
		return true
	}
	return d.params.Memory != p.Memory ||
		d.params.Iterations != p.Iterations ||
		d.params.Parallelism != p.Parallelism ||
		d.params.KeyLength != p.KeyLength ||
		d.params.SaltLength != p.SaltLength
}

type decoded struct {
	params Params
	salt   []byte
	key    []byte
}

func decode(encoded string) (decoded, error) {
	var d decoded
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" {
		return d, ErrMalformedHash
	}
	if fields[1] != "argon2id" {
		return d, ErrIncompatibleVariant
	}
	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return d, ErrMalformedHash
	}
	if version != argon2.Version {
		return d, ErrIncompatibleVersion
	}
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &d.params.Memory, &d.params.Iterations, &d.params.Parallelism); err != nil {
		return d, ErrMalformedHash
	}
	var err error
	if d.salt, err = b64.DecodeString(fields[4]); err != nil || len(d.salt) == 0 {
		return d, ErrMalformedHash
	}
	if d.key, err = b64.DecodeString(fields[5]); err != nil || len(d.key) == 0 {
		return d, ErrMalformedHash
	}
	d.params.SaltLength = uint32(len(d.salt))
	d.params.KeyLength = uint32(len(d.key))
	return d, nil
}
