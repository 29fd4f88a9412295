package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pscheid92/syncvision/internal/platform/config"
	"github.com/stretchr/testify/assert"
)

func requestWithOrigin(origin string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/socket", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func checkOriginFor(origins ...string) func(*http.Request) bool {
	return NewCheckOrigin(&config.Config{CORSAllowedOrigins: origins})
}

func TestCheckOrigin_Wildcard(t *testing.T) {
	check := checkOriginFor("*")

	assert.True(t, check(requestWithOrigin("https://anything.example")))
	assert.True(t, check(requestWithOrigin("")))
}

func TestCheckOrigin_AllowList(t *testing.T) {
	check := checkOriginFor("https://app.example.com", "http://localhost:3000")

	tests := []struct {
		origin string
		want   bool
	}{
		{"https://app.example.com", true},
		{"HTTPS://APP.EXAMPLE.COM", true},
		{"https://app.example.com/some/path", true},
		{"http://localhost:3000", true},
		{"http://localhost:3001", false},
		{"http://app.example.com", false},
		{"https://evil.example.com", false},
		{"not a url", false},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			assert.Equal(t, tt.want, check(requestWithOrigin(tt.origin)))
		})
	}
}

func TestCheckOrigin_IgnoresMalformedConfig(t *testing.T) {
	check := checkOriginFor("::bad::", "https://ok.example")

	assert.True(t, check(requestWithOrigin("https://ok.example")))
	assert.False(t, check(requestWithOrigin("https://other.example")))
}

func TestCheckOrigin_WildcardAnywhereInList(t *testing.T) {
	check := checkOriginFor("https://app.example.com", "*")

	assert.True(t, check(requestWithOrigin("https://evil.example.com")))
}
