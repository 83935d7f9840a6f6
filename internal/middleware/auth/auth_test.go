package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker/internal/core"
)

func TestAuthorizer_Middleware(t *testing.T) {
	admins := map[int64]core.Owner{100: "artem"}
	a := NewAuthorizer(admins)
	admins[200] = "nikita"

	var got User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		got, ok = FromContext(r.Context())
		require.True(t, ok)
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "allowed", header: "100", status: http.StatusNoContent},
		{name: "allowed with spaces", header: " 100 ", status: http.StatusNoContent},
		{name: "unknown user", header: "999", status: http.StatusForbidden},
		{name: "added after construction", header: "200", status: http.StatusForbidden},
		{name: "not a number", header: "artem", status: http.StatusForbidden},
		{name: "missing", header: "", status: http.StatusForbidden},
	}

	h := a.Middleware(nil)(next)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = User{}
			req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			if tt.header != "" {
				req.Header.Set(UserIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusNoContent {
				assert.Equal(t, User{ID: 100, Owner: "artem"}, got)
			}
		})
	}
}

func TestAuthorizer_CustomDenied(t *testing.T) {
	a := NewAuthorizer(nil)
	h := a.Middleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFromContext_Empty(t *testing.T) {
	_, ok := FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
