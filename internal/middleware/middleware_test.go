package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alimgiray/lotdesk/internal/repositories"
	"github.com/alimgiray/lotdesk/internal/services"
	"github.com/alimgiray/lotdesk/pkg/database"
	"github.com/alimgiray/lotdesk/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() Claims {
	return Claims{
		OrgID: "org-1",
		Email: "ops@example.com",
		Name:  "Dana",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "auth|42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func newAuthRouter(t *testing.T) (*gin.Engine, *services.UserService) {
	gin.SetMode(gin.TestMode)

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	userService := services.NewUserService(repositories.NewUserRepository(db))

	router := gin.New()
	router.Use(RequireAuth(testSecret, userService))
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"org_id":  OrgID(c),
			"user_id": UserID(c),
			"email":   GetClaims(c).Email,
		})
	})
	return router, userService
}

func TestRequireAuth(t *testing.T) {
	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noOrg := validClaims()
	noOrg.OrgID = ""

	testCases := []struct {
		name           string
		header         func(t *testing.T) string
		expectedStatus int
	}{
		{
			name:           "Valid token",
			header:         func(t *testing.T) string { return "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, validClaims()) },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing header",
			header:         func(t *testing.T) string { return "" },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong scheme",
			header:         func(t *testing.T) string { return "Basic dXNlcjpwYXNz" },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong secret",
			header:         func(t *testing.T) string { return "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims()) },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong algorithm",
			header:         func(t *testing.T) string { return "Bearer " + signToken(t, jwt.SigningMethodHS512, testSecret, validClaims()) },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Expired",
			header:         func(t *testing.T) string { return "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, expired) },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Missing organization",
			header:         func(t *testing.T) string { return "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, noOrg) },
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router, _ := newAuthRouter(t)

			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if header := tc.header(t); header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tc.expectedStatus == http.StatusOK {
				assert.Equal(t, "org-1", body["org_id"])
				assert.Equal(t, "auth|42", body["user_id"])
				assert.Equal(t, "ops@example.com", body["email"])
			} else {
				assert.NotEmpty(t, body["detail"])
			}
		})
	}
}

func TestRequireAuthProvisionsUser(t *testing.T) {
	router, userService := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, testSecret, validClaims()))
	router.ServeHTTP(httptest.NewRecorder(), req)

	user, err := userService.GetUserByID("auth|42")
	require.NoError(t, err)
	assert.Equal(t, "org-1", user.OrgID)
	assert.Equal(t, "Dana", user.Name)
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger.InitWithOutput(&buf, "info")
	defer logger.Init()

	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": RequestID(c)})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	requestID := w.Header().Get(RequestIDHeader)
	assert.Len(t, requestID, 36)
	assert.Contains(t, w.Body.String(), requestID)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, requestID, entry["request_id"])
	assert.Equal(t, "/ping", entry["path"])
	assert.Equal(t, float64(http.StatusOK), entry["status"])

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "upstream-id", w.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS([]string{"https://dash.example.com"}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://dash.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
