package security

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the work factor used when the existing user base was
// seeded; changing it only affects newly created hashes.
const bcryptCost = 10

// HashPassword hashes a plain text password with bcrypt. Only called at
// account creation and seeding, never on the request path.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password.
// A mismatch is a nil-adjacent outcome, not an exceptional one: the
// returned error is bcrypt.ErrMismatchedHashAndPassword.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
