package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		dev    bool
		want   bool
	}{
		{"no origin", "", false, true},
		{"same host", "https://sent.example.com", false, true},
		{"foreign host", "https://evil.example.org", false, false},
		{"localhost in production", "http://localhost:3000", false, false},
		{"localhost in development", "http://localhost:3000", true, true},
		{"loopback in development", "http://127.0.0.1:5173", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://sent.example.com/ws/analyze", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, newCheckOrigin(tt.dev)(req))
		})
	}
}
