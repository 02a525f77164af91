package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirananta/storefront/internal/constants"
	inHttp "github.com/kirananta/storefront/internal/http"
	"github.com/kirananta/storefront/internal/session"
)

const testSecretKey = "test-secret-key"

func signedToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Audience:  jwt.ClaimStrings{constants.AudienceShopper},
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecretKey))
	require.NoError(t, err)
	return token
}

func sessionRouter(t *testing.T, captured *session.Session) *mux.Router {
	t.Helper()
	router := mux.NewRouter()
	router.Use(ResolveSession(testSecretKey))
	router.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		sess, err := session.FromContext(r.Context())
		require.NoError(t, err)
		*captured = sess
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	return router
}

func TestResolveSessionGeneratesGuestID(t *testing.T) {
	var sess session.Session
	router := sessionRouter(t, &sess)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, sess.Authenticated)
	assert.NotEqual(t, uuid.Nil, sess.SessionID)
	assert.Equal(t, sess.SessionID.String(), rec.Header().Get(inHttp.KeyHeaderSessionID))
}

func TestResolveSessionEchoesExistingGuestID(t *testing.T) {
	var sess session.Session
	router := sessionRouter(t, &sess)
	sessionID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(inHttp.KeyHeaderSessionID, sessionID.String())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sessionID, sess.SessionID)
	assert.Equal(t, sessionID.String(), rec.Header().Get(inHttp.KeyHeaderSessionID))
}

func TestResolveSessionAcceptsValidBearer(t *testing.T) {
	var sess session.Session
	router := sessionRouter(t, &sess)
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, userID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sess.Authenticated)
	assert.Equal(t, userID, sess.UserID)
}

func TestResolveSessionRejectsInvalidBearer(t *testing.T) {
	var sess session.Session
	router := sessionRouter(t, &sess)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsGuests(t *testing.T) {
	router := mux.NewRouter()
	router.Use(ResolveSession(testSecretKey), RequireAuth)
	router.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
