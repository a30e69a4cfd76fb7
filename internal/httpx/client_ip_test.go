package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolvedIP(t *testing.T, trusted []string, remote string, forwarded ...string) string {
	t.Helper()
	prefixes, err := ParseTrustedProxies(trusted)
	require.NoError(t, err)

	var got string
	h := ClientIPMiddleware(prefixes)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClientIP(r)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remote
	for _, f := range forwarded {
		req.Header.Add("X-Forwarded-For", f)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name      string
		trusted   []string
		remote    string
		forwarded []string
		want      string
	}{
		{"no proxies configured ignores header", nil, "192.0.2.1:5555", []string{"203.0.113.9"}, "192.0.2.1"},
		{"untrusted peer ignores header", []string{"10.0.0.0/8"}, "192.0.2.1:5555", []string{"203.0.113.9"}, "192.0.2.1"},
		{"trusted peer without header", []string{"10.0.0.0/8"}, "10.1.2.3:5555", nil, "10.1.2.3"},
		{"trusted peer", []string{"10.0.0.0/8"}, "10.1.2.3:5555", []string{"203.0.113.9"}, "203.0.113.9"},
		{"spoofed leftmost hop is skipped", []string{"10.0.0.0/8"}, "10.1.2.3:5555", []string{"1.1.1.1, 203.0.113.9"}, "203.0.113.9"},
		{"chain of trusted proxies", []string{"10.0.0.0/8", "172.16.0.5"}, "10.1.2.3:5555", []string{"203.0.113.9, 172.16.0.5", "10.9.9.9"}, "203.0.113.9"},
		{"garbage hop stops the walk", []string{"10.0.0.0/8"}, "10.1.2.3:5555", []string{"203.0.113.9, not-an-ip"}, "10.1.2.3"},
		{"ipv6 peer", []string{"::1"}, "[::1]:5555", []string{"2001:db8::7"}, "2001:db8::7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolvedIP(t, tt.trusted, tt.remote, tt.forwarded...))
		})
	}
}

func TestClientIP_WithoutMiddlewareUsesRemoteHost(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")

	assert.Equal(t, "192.0.2.1", ClientIP(req))
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 127.0.0.1 ", "", "::1"})
	require.NoError(t, err)
	assert.Len(t, prefixes, 3)

	_, err = ParseTrustedProxies([]string{"10.0.0.0/33"})
	assert.Error(t, err)
	_, err = ParseTrustedProxies([]string{"proxy.local"})
	assert.Error(t, err)
}

func TestRateLimiter_IgnoresForwardedForFromUntrustedPeers(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	handler := Chain(okHandler, ClientIPMiddleware(nil), rl.Middleware)

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/books/popular", nil)
		req.RemoteAddr = "192.0.2.1:1111"
		req.Header.Set("X-Forwarded-For", forwarded)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.2"))
}
