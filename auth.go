package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const sessionCookieName = "heracraft_session"

// Session is the authenticated caller context carried by the signed
// cookie: who the caller is and which grade they held at login time.
type Session struct {
	UserID int
	Grade  string
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Grade == GradeAdmin
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(stored string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Grade string `json:"grade"`
}

// SessionCodec signs and verifies the session cookie. The cookie is the
// only session state; there is no server-side session table.
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionCodec(secret string, ttl time.Duration) *SessionCodec {
	return &SessionCodec{secret: []byte(secret), ttl: ttl}
}

func (c *SessionCodec) encode(s Session, now time.Time) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(s.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Grade: s.Grade,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

func (c *SessionCodec) decode(value string) (*Session, error) {
	token, err := jwt.ParseWithClaims(value, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("UNEXPECTED_SIGNING_METHOD")
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("INVALID_SESSION")
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, errors.New("INVALID_SESSION")
	}
	return &Session{UserID: id, Grade: claims.Grade}, nil
}

// ReadSession returns the caller's session, or nil for anonymous
// requests and any cookie that fails verification.
func (c *SessionCodec) ReadSession(r *http.Request) *Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}
	session, err := c.decode(cookie.Value)
	if err != nil {
		return nil
	}
	return session
}

func (c *SessionCodec) WriteSession(w http.ResponseWriter, s Session) error {
	now := time.Now()
	value, err := c.encode(s, now)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  now.Add(c.ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (c *SessionCodec) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
