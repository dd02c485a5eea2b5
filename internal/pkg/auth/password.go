package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the hashing cost for stored account passwords
const BcryptCost = 12

// HashPassword returns the salted bcrypt hash of password
func HashPassword(password string) (string, error) {
	return hashWithCost(password, BcryptCost)
}

func hashWithCost(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword reports whether password matches hashedPassword
func CheckPassword(hashedPassword, password string) bool {
	if hashedPassword == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// Hasher hashes and verifies passwords. Tests use a low-cost hasher.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher using BcryptCost
func NewHasher() *Hasher {
	return &Hasher{Cost: BcryptCost}
}

// Hash returns the bcrypt hash of password at the hasher's cost
func (h *Hasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = BcryptCost
	}
	return hashWithCost(password, cost)
}

// Check reports whether password matches hashedPassword
func (h *Hasher) Check(hashedPassword, password string) bool {
	return CheckPassword(hashedPassword, password)
}
