package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives the bcrypt hash stored for an account. The plaintext
// never reaches the database.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hashed), err
}

// CheckPassword reports whether the plaintext matches the stored hash.
func CheckPassword(storedHash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}
