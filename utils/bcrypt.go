package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword returns the bcrypt hash for storage on the user record.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// ComparePassword reports whether the plaintext matches the stored hash.
func ComparePassword(hashed string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
}
