package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes an account password with bcrypt at the
// configured cost.  Costs outside bcrypt's legal range (a zero value
// or a typo in BCRYPT_COST) fall back to the library default instead
// of failing registration.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// The comparison is constant-time within bcrypt itself.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
