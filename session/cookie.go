package session

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// CookieName is the name of the console's session cookie.
const CookieName = "console_session"

// CookieCodec mints and verifies the signed session cookie. The cookie
// carries the session SID; the guard still checks it against the store, so
// a valid signature alone doesn't authenticate a logged-out user.
type CookieCodec struct {
	signingKey []byte
	maxAge     time.Duration
}

func NewCookieCodec(signingKey []byte, maxAge time.Duration) *CookieCodec {
	return &CookieCodec{signingKey: signingKey, maxAge: maxAge}
}

// Mint creates a signed cookie value for the given session.
func (c *CookieCodec) Mint(session *Session) (string, error) {
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"sid": session.SID,
		"sub": fmt.Sprintf("%d", session.ID),
		"iat": now.Unix(),
		"exp": now.Add(c.maxAge).Unix(),
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", fmt.Errorf("[CookieCodec Mint] failed to sign cookie: %w", err)
	}
	return signed, nil
}

// Verify checks the cookie signature and expiry and returns the SID it
// carries.
func (c *CookieCodec) Verify(value string) (string, error) {
	token, err := jwtlib.Parse(value, func(token *jwtlib.Token) (any, error) {
		if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return c.signingKey, nil
	}, jwtlib.WithTimeFunc(func() time.Time { return NowTimeFunc() }))
	if err != nil {
		return "", fmt.Errorf("[CookieCodec Verify] invalid cookie: %w", err)
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return "", fmt.Errorf("[CookieCodec Verify] unexpected claims type")
	}

	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", fmt.Errorf("[CookieCodec Verify] cookie missing sid claim")
	}

	return sid, nil
}

// MaxAge returns the cookie lifetime in seconds, for http.Cookie.MaxAge.
func (c *CookieCodec) MaxAge() int {
	return int(c.maxAge.Seconds())
}
