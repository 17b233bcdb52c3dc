package security

import "golang.org/x/crypto/bcrypt"

// bcrypt cost matches what the user base was hashed with; changing it only
// affects newly stored hashes.
const bcryptCost = 10

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
