package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultResetMaxAge = 84600 * time.Second

// ResetTokens issues and checks password reset tokens. A token carries the
// user id and its issue time, signed with a key derived from Secret and Salt.
type ResetTokens struct {
	Secret string
	Salt   string
	MaxAge time.Duration
	Now    func() time.Time
}

type resetClaims struct {
	UserID   int64            `json:"id"`
	IssuedAt *jwt.NumericDate `json:"iat"`
}

func (c resetClaims) GetExpirationTime() (*jwt.NumericDate, error) { return nil, nil }
func (c resetClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return c.IssuedAt, nil }
func (c resetClaims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c resetClaims) GetIssuer() (string, error)                   { return "", nil }
func (c resetClaims) GetSubject() (string, error)                  { return "", nil }
func (c resetClaims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

func (r ResetTokens) key() []byte {
	mac := hmac.New(sha256.New, []byte(r.Secret))
	mac.Write([]byte(r.Salt))
	return mac.Sum(nil)
}

func (r ResetTokens) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r ResetTokens) maxAge() time.Duration {
	if r.MaxAge > 0 {
		return r.MaxAge
	}
	return DefaultResetMaxAge
}

func (r ResetTokens) Generate(userID int64) (string, error) {
	claims := resetClaims{UserID: userID, IssuedAt: jwt.NewNumericDate(r.now())}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.key())
}

// Parse returns the user id carried by token. ok is false for a bad
// signature, a foreign algorithm, malformed input, or a token older than
// MaxAge; callers are not told which.
func (r ResetTokens) Parse(token string) (userID int64, ok bool) {
	var claims resetClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return r.key(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil || claims.IssuedAt == nil || claims.UserID == 0 {
		return 0, false
	}
	// iat has whole-second precision
	age := r.now().Truncate(time.Second).Sub(claims.IssuedAt.Time)
	if age < 0 || age > r.maxAge() {
		return 0, false
	}
	return claims.UserID, true
}
