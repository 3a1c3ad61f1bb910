package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"socialfeed/internal/testutils"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func sign(t *testing.T, claims jwt.Claims, key []byte) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func newRouter() *gin.Engine {
	testutils.InitTestMain()
	r := testutils.SetupTestRouter()
	r.GET("/me", JWTAuthMiddleware(secret), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(UserIDKey))
	})
	return r
}

func TestJWTAuthMiddleware(t *testing.T) {
	userID := uuid.Must(uuid.NewV4()).String()
	exp := time.Now().Add(time.Hour).Unix()
	valid := sign(t, &jwt.StandardClaims{Subject: userID, ExpiresAt: exp}, secret)
	upper := sign(t, &jwt.StandardClaims{Subject: strings.ToUpper(userID), ExpiresAt: exp}, secret)
	expired := sign(t, &jwt.StandardClaims{Subject: userID, ExpiresAt: time.Now().Add(-time.Hour).Unix()}, secret)
	foreign := sign(t, &jwt.StandardClaims{Subject: userID}, []byte("other"))
	noSubject := sign(t, &jwt.StandardClaims{ExpiresAt: exp}, secret)
	notUUID := sign(t, &jwt.StandardClaims{Subject: "user-1", ExpiresAt: exp}, secret)

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"valid token", "Bearer " + valid, http.StatusOK},
		{"lowercase scheme", "bearer " + valid, http.StatusOK},
		{"uppercase subject", "Bearer " + upper, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"no scheme", valid, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong key", "Bearer " + foreign, http.StatusUnauthorized},
		{"no subject", "Bearer " + noSubject, http.StatusUnauthorized},
		{"subject not a uuid", "Bearer " + notUUID, http.StatusUnauthorized},
	}

	r := newRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, userID, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"error"`)
			}
		})
	}
}
