package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowList_Allowed(t *testing.T) {
	a := NewAllowList([]string{"203.0.113.7", "10.0.0.0/8", "2001:db8::/32", "not-an-ip"}, false, "")
	cases := map[string]bool{
		"203.0.113.7": true,
		"203.0.113.8": false,
		"10.20.30.40": true,
		"2001:db8::1": true,
		"2001:db9::1": false,
		"127.0.0.1":   false,
	}
	for ip, want := range cases {
		assert.Equal(t, want, a.Allowed(net.ParseIP(ip)), ip)
	}
	assert.False(t, a.Allowed(nil))
}

func TestAllowList_Wrap(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	h := NewAllowList(nil, true, "").Wrap(ok)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	req.RemoteAddr = "198.51.100.1:5555"
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"forbidden"}`, rec.Body.String())
}

func TestAllowList_Header(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := NewAllowList([]string{"10.0.0.0/8"}, false, "X-Forwarded-For").Wrap(ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.1:5555"
	req.Header.Set("X-Forwarded-For", "10.1.2.3, 198.51.100.1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
