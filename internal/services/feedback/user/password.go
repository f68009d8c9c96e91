package user

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor for stored hashes. Tests lower it with
// SetHashCostForTesting.
var HashCost = bcrypt.DefaultCost

// dummyHash is compared against when an email is unknown so that the
// unknown-email path costs the same as a wrong password.
var dummyHash = mustHash("emoji-feedback-dummy-password")

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash. A malformed hash is
// reported as a mismatch.
func VerifyPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// BurnVerify performs a comparison that always fails.
func BurnVerify(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// SetHashCostForTesting lowers the bcrypt cost and returns a restore func.
func SetHashCostForTesting() func() {
	previous := HashCost
	HashCost = bcrypt.MinCost
	return func() { HashCost = previous }
}

func mustHash(password string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(errors.Join(errors.New("build dummy hash"), err))
	}
	return hash
}
