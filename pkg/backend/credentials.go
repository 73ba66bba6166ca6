package backend

import "net/http"

// Credentials carries the browser's session cookies to the backend.
type Credentials struct {
	Cookies []*http.Cookie
}

// CredentialsFromRequest captures the cookies of an inbound browser request.
func CredentialsFromRequest(r *http.Request) Credentials {
	if r == nil {
		return Credentials{}
	}
	return Credentials{Cookies: r.Cookies()}
}

// Cookie returns the value of the named cookie.
func (c Credentials) Cookie(name string) (string, bool) {
	for _, cookie := range c.Cookies {
		if cookie.Name == name {
			return cookie.Value, true
		}
	}
	return "", false
}

// Empty reports whether no cookies are present.
func (c Credentials) Empty() bool {
	return len(c.Cookies) == 0
}
