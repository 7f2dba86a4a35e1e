package crypto

import (
	"crypto/rand"
	"math/big"
)

// AlphanumericAlphabet is the default alphabet for random strings: URL safe
// and free of characters that need escaping in query strings or TOML.
const AlphanumericAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RandomString returns a cryptographically secure random string of the given
// length built from the provided alphabet. Panics on an empty alphabet or if
// the system entropy source fails, both of which are unrecoverable.
func RandomString(length int, alphabet string) string {
	if len(alphabet) == 0 {
		panic("crypto: empty alphabet")
	}

	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b)
}

// SessionIDLength gives 32 alphanumeric characters, about 190 bits of
// entropy, well beyond guessability for a session identifier.
const SessionIDLength = 32

// ResetTokenLength matches the session identifier entropy; reset tokens are
// additionally single use and minutes-lived.
const ResetTokenLength = 32

// NewSessionID returns a fresh unguessable session identifier.
func NewSessionID() string {
	return RandomString(SessionIDLength, AlphanumericAlphabet)
}

// NewResetToken returns a fresh single-use password reset token.
func NewResetToken() string {
	return RandomString(ResetTokenLength, AlphanumericAlphabet)
}
