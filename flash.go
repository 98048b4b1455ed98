package main

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	flashCookieName = "heracraft_flash"
	flashTTL        = 10 * time.Minute

	flashSuccess = "success"
	flashError   = "error"
)

// Notice is a one-shot message shown on the next rendered page after a
// redirect. Category selects the styling (success or error).
type Notice struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

type flashClaims struct {
	jwt.RegisteredClaims
	Notices []Notice `json:"notices"`
}

// Flash queues a notice for the next rendered page. Notices travel in
// their own signed cookie so they survive the redirect without any
// server-side state. Notices already queued on this response are kept.
func (c *SessionCodec) Flash(w http.ResponseWriter, r *http.Request, category string, message string) {
	notices := c.queuedFlashes(w, r)
	notices = append(notices, Notice{Message: message, Category: category})

	now := time.Now()
	claims := flashClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(flashTTL)),
		},
		Notices: notices,
	}
	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		Expires:  now.Add(flashTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ConsumeFlashes returns the queued notices and clears the cookie.
func (c *SessionCodec) ConsumeFlashes(w http.ResponseWriter, r *http.Request) []Notice {
	notices := c.pendingFlashes(r)
	if len(notices) > 0 {
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return notices
}

// queuedFlashes prefers the cookie this response already set, so
// several notices flashed while handling one request all survive.
func (c *SessionCodec) queuedFlashes(w http.ResponseWriter, r *http.Request) []Notice {
	res := http.Response{Header: w.Header()}
	cookies := res.Cookies()
	for i := len(cookies) - 1; i >= 0; i-- {
		if cookies[i].Name == flashCookieName && cookies[i].Value != "" {
			return c.decodeFlashes(cookies[i].Value)
		}
	}
	return c.pendingFlashes(r)
}

func (c *SessionCodec) pendingFlashes(r *http.Request) []Notice {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}
	return c.decodeFlashes(cookie.Value)
}

func (c *SessionCodec) decodeFlashes(value string) []Notice {
	token, err := jwt.ParseWithClaims(value, &flashClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return c.secret, nil
	})
	if err != nil {
		return nil
	}
	claims, ok := token.Claims.(*flashClaims)
	if !ok || !token.Valid {
		return nil
	}
	return claims.Notices
}
