package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/oblivions/storefront/internal/core/domain"
)

const SessionCookieName = "storefront.sid"

var errInvalidCookie = errors.New("invalid session cookie")

type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// CookieCodec signs the session id into the session cookie and reads it
// back. The cookie carries nothing but the id and its expiry.
type CookieCodec struct {
	secret []byte
	now    func() time.Time
}

func NewCookieCodec(secret string) *CookieCodec {
	return &CookieCodec{secret: []byte(secret), now: time.Now}
}

// WithClock replaces the time source used to check cookie expiry.
func (cc *CookieCodec) WithClock(now func() time.Time) *CookieCodec {
	cc.now = now
	return cc
}

func (cc *CookieCodec) Encode(sess *domain.Session) (string, error) {
	claims := sessionClaims{
		SID: sess.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cc.secret)
}

// Decode verifies the signature and expiry and returns the session id.
func (cc *CookieCodec) Decode(value string) (string, error) {
	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (any, error) {
		return cc.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(cc.now),
	)
	if err != nil || !tkn.Valid || claims.SID == "" {
		return "", errInvalidCookie
	}
	return claims.SID, nil
}

// Read returns the session id carried by the request, or "" when the cookie
// is absent or does not verify.
func (cc *CookieCodec) Read(c echo.Context) string {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	sid, err := cc.Decode(cookie.Value)
	if err != nil {
		return ""
	}
	return sid
}

// Write sets the session cookie for sess.
func (cc *CookieCodec) Write(c echo.Context, sess *domain.Session) error {
	value, err := cc.Encode(sess)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie on the client.
func (cc *CookieCodec) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
