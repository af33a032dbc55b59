package types

import "github.com/golang-jwt/jwt/v4"

// Claims carried in bearer tokens issued by the identity provider.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	UID      string `json:"uid"`
	jwt.RegisteredClaims
}

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	return c.RegisteredClaims.ExpiresAt, nil
}
func (c Claims) GetSubject() (string, error) {
	return c.RegisteredClaims.Subject, nil
}
