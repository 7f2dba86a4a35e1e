package crypto

import "golang.org/x/crypto/bcrypt"

// dummyHash is the comparison target when an account has no local
// password, so a failed check costs the same whether or not the
// account exists.
var dummyHash, _ = GenerateHash("placeholder-for-absent-password")

// CheckPassword compares a bcrypt hashed password with its possible plaintext
// equivalent. Fails closed: an empty hash (external-provider account with no
// local password) never matches anything, but still pays the full compare
// cost against dummyHash.
func CheckPassword(password, hash string) bool {
	if hash == "" {
		bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateHash creates a bcrypt hash from a password using reasonable default cost
func GenerateHash(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hashedBytes), err
}
