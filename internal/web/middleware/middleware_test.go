package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JonMunkholm/zander/internal/auth"
	"github.com/JonMunkholm/zander/internal/core"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		headers map[string]string
		want    string
	}{
		{
			name:    "untrusted peer keeps remote addr",
			remote:  "203.0.113.9:4000",
			headers: map[string]string{"X-Real-IP": "10.0.0.1"},
			want:    "203.0.113.9:4000",
		},
		{
			name:    "trusted cidr honours X-Real-IP",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:5000",
			headers: map[string]string{"X-Real-IP": "198.51.100.7"},
			want:    "198.51.100.7",
		},
		{
			name:    "trusted bare ip uses first forwarded hop",
			trusted: []string{"127.0.0.1"},
			remote:  "127.0.0.1:5000",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.2"},
			want:    "198.51.100.7",
		},
		{
			name:    "invalid forwarded value ignored",
			trusted: []string{"127.0.0.1"},
			remote:  "127.0.0.1:5000",
			headers: map[string]string{"X-Real-IP": "not-an-ip"},
			want:    "127.0.0.1:5000",
		},
		{
			name:    "bad cidr entries skipped",
			trusted: []string{"nonsense", ""},
			remote:  "127.0.0.1:5000",
			headers: map[string]string{"X-Real-IP": "198.51.100.7"},
			want:    "127.0.0.1:5000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBearerAuth(t *testing.T) {
	issuer := auth.NewIssuer("middleware-secret-123", "zander")
	actor := core.Actor{TenantID: uuid.New(), UserID: "u-1", Email: "a@example.com"}
	token, err := issuer.Mint(actor, time.Hour)
	require.NoError(t, err)

	var gotErr error
	onError := func(w http.ResponseWriter, r *http.Request, err error, status int) {
		gotErr = err
		w.WriteHeader(status)
	}

	var seen core.Actor
	h := BearerAuth(issuer, onError)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = core.ActorFromContext(r.Context())
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantErr    error
	}{
		{"valid", "Bearer " + token, http.StatusOK, nil},
		{"lower-case scheme", "bearer " + token, http.StatusOK, nil},
		{"missing", "", http.StatusUnauthorized, auth.ErrMissingToken},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, auth.ErrMissingToken},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotErr, seen = nil, core.Actor{}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantErr != nil {
				assert.ErrorIs(t, gotErr, tt.wantErr)
				return
			}
			assert.Equal(t, actor, seen)
		})
	}
}

func TestLogger_CapturesStatus(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}
