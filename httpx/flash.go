package httpx

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

const flashCookieName = "flash"

// Flash levels, used as CSS classes by the templates.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a transient status message shown on the next rendered page.
type Flash struct {
	Level   string
	Message string
}

// SetFlash stores a flash message for the next request.
func SetFlash(w http.ResponseWriter, level, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(level + "|" + msg),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash reads the flash message, if any, and clears the cookie.
func PopFlash(w http.ResponseWriter, r *http.Request) (Flash, bool) {
	c, err := r.Cookie(flashCookieName)
	if err != nil || c.Value == "" {
		return Flash{}, false
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1})
	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return Flash{}, false
	}
	level, msg, ok := strings.Cut(raw, "|")
	if !ok {
		return Flash{Level: FlashSuccess, Message: raw}, true
	}
	return Flash{Level: level, Message: msg}, true
}
