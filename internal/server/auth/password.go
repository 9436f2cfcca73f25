package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the work factor of existing stored hashes.
const bcryptCost = 12

// HashPassword hashes an account password with bcrypt. Each call salts
// freshly, so hashing the same password twice yields different outputs.
// Account passwords are only ever verified, never decrypted.
func HashPassword(rawPassword string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether rawPassword matches hash. The comparison is
// constant-time inside bcrypt.
func CheckPassword(rawPassword, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(rawPassword)) == nil
}
