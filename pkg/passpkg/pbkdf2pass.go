// Package passpkg provides password hashing and verification functionality.
//
// Hashes are PBKDF2-SHA512 derived and stored as a single packed string
// "HEXHASH-HEXSALT". The derivation parameters are fixed; changing them
// invalidates previously stored hashes.
package passpkg

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16
	keySize    = 32
	iterations = 100_000
)

var (
	// ErrMismatchedPassword indicates that the password does not match the stored hash.
	ErrMismatchedPassword = errors.New("password does not match")
	// ErrInvalidHashFormat indicates a malformed packed hash string.
	ErrInvalidHashFormat = errors.New("invalid packed hash format")
)

// packedHash is the parsed form of the stored "HEXHASH-HEXSALT" string.
type packedHash struct {
	hash []byte
	salt []byte
}

func (p packedHash) format() string {
	return hex.EncodeToString(p.hash) + "-" + hex.EncodeToString(p.salt)
}

func parse(s string) (packedHash, error) {
	var p packedHash

	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return p, ErrInvalidHashFormat
	}

	hash, err := hex.DecodeString(parts[0])
	if err != nil {
		return p, ErrInvalidHashFormat
	}

	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return p, ErrInvalidHashFormat
	}

	p.hash, p.salt = hash, salt

	return p, nil
}

func derive(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, keySize, sha512.New)
}

// Hash derives a packed hash string from the password using a random salt.
func Hash(password string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	p := packedHash{
		hash: derive(password, salt),
		salt: salt,
	}

	return p.format(), nil
}

// Check verifies the password against the stored packed hash in constant time.
func Check(password, packed string) error {
	p, err := parse(packed)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare(p.hash, derive(password, p.salt)) != 1 {
		return ErrMismatchedPassword
	}

	return nil
}

// dummy equalizes verification work on lookups of unknown usernames.
var dummy = func() string {
	h, err := Hash("dummy")
	if err != nil {
		panic(err)
	}

	return h
}()

// CheckDummy burns the same derivation work as Check without a real hash.
// Callers use it to keep "unknown user" and "wrong password" indistinguishable by timing.
func CheckDummy(password string) {
	_ = Check(password, dummy)
}
