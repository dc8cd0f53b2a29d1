// internal/auth/auth.go
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when login attempts come in faster than
// the limiter allows.
var ErrRateLimited = errors.New("too many login attempts")

// Verifier checks the shared administrator credential. The configured
// password is either plaintext (inherited behavior, compared in
// constant time) or an argon2id PHC hash ($argon2id$...).
type Verifier struct {
	username string
	password string
	limiter  *rate.Limiter
}

// NewVerifier creates a credential verifier with login rate limiting.
func NewVerifier(username, password string) *Verifier {
	return &Verifier{
		username: username,
		password: password,
		limiter:  rate.NewLimiter(rate.Every(1*time.Minute), 5), // 5 attempts per minute
	}
}

// Verify reports whether the supplied credential pair matches the
// configured one.
func (v *Verifier) Verify(username, password string) (bool, error) {
	if !v.limiter.Allow() {
		return false, ErrRateLimited
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1

	var passOK bool
	if strings.HasPrefix(v.password, "$argon2id$") {
		ok, err := verifyArgon2(password, v.password)
		if err != nil {
			return false, err
		}
		passOK = ok
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(v.password)) == 1
	}

	return userOK && passOK, nil
}
