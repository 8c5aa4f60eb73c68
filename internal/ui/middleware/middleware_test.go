package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		environment string
		wantHSTS    bool
	}{
		{environment: "dev", wantHSTS: false},
		{environment: "test", wantHSTS: false},
		{environment: "staging", wantHSTS: true},
		{environment: "prod", wantHSTS: true},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			rec := serve(SecurityHeaders(tt.environment)(ok), httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
			assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
			assert.Equal(t, tt.wantHSTS, rec.Header().Get("Strict-Transport-Security") != "")
		})
	}
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(1, 2)(ok)

	for i := range 2 {
		rec := serve(h, httptest.NewRequest(http.MethodPost, "/ui-api/localities/1/report", nil))
		assert.Equal(t, http.StatusOK, rec.Code, "request %d is within the burst", i)
	}

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/ui-api/localities/1/report", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")
}

func TestRateLimitDisabled(t *testing.T) {
	h := RateLimit(0, 0)(ok)
	for range 20 {
		assert.Equal(t, http.StatusOK, serve(h, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		want    string
	}{
		{name: "any origin by default", origins: nil, origin: "https://example.org", want: "*"},
		{name: "listed origin", origins: []string{"https://sam.example.org"}, origin: "https://sam.example.org", want: "https://sam.example.org"},
		{name: "unlisted origin", origins: []string{"https://sam.example.org"}, origin: "https://evil.example", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw, err := NewCORS(tt.origins)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/ui-api/state", nil)
			req.Header.Set("Origin", tt.origin)
			rec := serve(CORS(mw)(ok), req)

			assert.Equal(t, tt.want, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestNewCORSRejectsInvalidOrigin(t *testing.T) {
	_, err := NewCORS([]string{"not an origin"})
	assert.Error(t, err)
}
