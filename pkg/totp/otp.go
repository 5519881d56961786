package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base32"
	"errors"
	"fmt"
	"hash"
	"math"
	"regexp"
	"strings"
	"time"
)

// Algorithm selects the HMAC hash used to derive one-time passwords.
type Algorithm string

const (
	AlgorithmSHA1   Algorithm = "SHA1"
	AlgorithmSHA256 Algorithm = "SHA256"
	AlgorithmSHA512 Algorithm = "SHA512"
)

const (
	// DefaultStep is the RFC 6238 standard 30-second validity window.
	DefaultStep = 30
	// SecretBytes is the amount of entropy in generated secrets. 64 bytes
	// keeps the secret usable as an HMAC-SHA512 key without stretching.
	SecretBytes = 64
)

// validSecretRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding
var validSecretRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

// Params configures a Generator. Digits has no default: every call site must
// state how many digits it expects, since authenticator apps and server-side
// verification must agree on the value.
type Params struct {
	Step      int       // validity window in seconds; DefaultStep when zero
	Digits    int       // OTP length, required, 1-10
	Algorithm Algorithm // HMAC hash; AlgorithmSHA1 when empty
}

// Generator derives RFC 6238 one-time passwords from a shared secret.
// It is a pure function of its construction parameters and the time instant;
// two instants within the same step window always yield the same OTP.
type Generator struct {
	key    []byte
	step   int64
	digits int
	hash   func() hash.Hash
}

// New builds a Generator from a Base32-encoded secret.
// The secret is normalized (whitespace trimmed, uppercased, padding stripped)
// before decoding so secrets copied from enrollment screens round-trip.
func New(secret string, params Params) (*Generator, error) {
	key, err := DecodeSecret(secret)
	if err != nil {
		return nil, err
	}

	if params.Step == 0 {
		params.Step = DefaultStep
	}
	if params.Step < 0 {
		return nil, ErrInvalidStep
	}
	if params.Digits <= 0 || params.Digits > 10 {
		return nil, ErrInvalidDigits
	}

	var hashFn func() hash.Hash
	switch params.Algorithm {
	case AlgorithmSHA1, "":
		hashFn = sha1.New
	case AlgorithmSHA256:
		hashFn = sha256.New
	case AlgorithmSHA512:
		hashFn = sha512.New
	default:
		return nil, ErrUnsupportedAlgorithm
	}

	return &Generator{
		key:    key,
		step:   int64(params.Step),
		digits: params.Digits,
		hash:   hashFn,
	}, nil
}

// OTPAt returns the one-time password for the step window containing the
// given Unix time.
func (g *Generator) OTPAt(t int64) string {
	return g.hotp(t / g.step)
}

// OTPNow returns the one-time password for the current step window.
func (g *Generator) OTPNow() string {
	return g.OTPAt(time.Now().Unix())
}

// hotp implements the RFC 4226 dynamic truncation over an 8-byte big-endian
// counter.
func (g *Generator) hotp(counter int64) string {
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter >>= 8
	}

	mac := hmac.New(g.hash, g.key)
	mac.Write(counterBytes)
	sum := mac.Sum(nil)

	// Low nibble of the last byte selects where the 4-byte slice starts.
	offset := sum[len(sum)-1] & 0x0f
	// Top bit is masked off so the value is an unambiguous 31-bit integer.
	bin := (int(sum[offset]&0x7f) << 24) |
		(int(sum[offset+1]&0xff) << 16) |
		(int(sum[offset+2]&0xff) << 8) |
		(int(sum[offset+3] & 0xff))

	code := bin % int(math.Pow10(g.digits))

	return fmt.Sprintf("%0*d", g.digits, code)
}

// DecodeSecret decodes a Base32 secret into raw HMAC key bytes.
// Returns ErrInvalidSecret if the input is not valid Base32.
func DecodeSecret(secret string) ([]byte, error) {
	secret = strings.ToUpper(strings.TrimSpace(secret))
	if !validSecretRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}

	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.TrimRight(secret, "="))
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}

// GenerateSecret generates a new Base32-encoded secret with SecretBytes of
// fresh entropy. Each identity owns exactly one live secret; rotation
// replaces it with a new value from this function.
func GenerateSecret() (string, error) {
	secret := make([]byte, SecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecret, err)
	}
	return base32.StdEncoding.EncodeToString(secret), nil
}
