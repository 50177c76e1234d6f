package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"bobsgarage/api/internal/models"
	"bobsgarage/api/internal/repository"
	"bobsgarage/api/internal/security"
)

const testAccessSecret = "middleware-test-secret"

type stubUserSource struct {
	mu      sync.Mutex
	users   map[int64]models.User
	touched []int64
}

func newStubUserSource(users ...models.User) *stubUserSource {
	s := &stubUserSource{users: map[int64]models.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubUserSource) GetByID(_ context.Context, id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUserSource) TouchLastLogin(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = append(s.touched, id)
	return nil
}

func (s *stubUserSource) touchedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.touched)
}

func authRouter(users UserSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", Auth(testAccessSecret, users, zerolog.Nop()), func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": user.ID, "username": user.Username})
	})
	router.GET("/admin", Auth(testAccessSecret, users, zerolog.Nop()), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func doRequest(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad error body %q: %v", rec.Body.String(), err)
	}
	return body["error"]
}

func TestAuth_MissingToken(t *testing.T) {
	router := authRouter(newStubUserSource())

	rec := doRequest(router, "/protected", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
	if code := errorCode(t, rec); code != "missing_token" {
		t.Fatalf("error %q, want missing_token", code)
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	router := authRouter(newStubUserSource())

	tok, err := security.GenerateAccessToken(testAccessSecret, 1, "bob@bobsgarage.com", false, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	rec := doRequest(router, "/protected", tok)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
	if code := errorCode(t, rec); code != "token_expired" {
		t.Fatalf("error %q, want token_expired", code)
	}
}

func TestAuth_TamperedToken(t *testing.T) {
	router := authRouter(newStubUserSource())

	tok, err := security.GenerateAccessToken("some-other-secret", 1, "bob@bobsgarage.com", false, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	rec := doRequest(router, "/protected", tok)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
	if code := errorCode(t, rec); code != "invalid_token" {
		t.Fatalf("error %q, want invalid_token", code)
	}
}

func TestAuth_UserDeleted(t *testing.T) {
	router := authRouter(newStubUserSource())

	tok, err := security.GenerateAccessToken(testAccessSecret, 99, "gone@bobsgarage.com", false, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	rec := doRequest(router, "/protected", tok)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
	if code := errorCode(t, rec); code != "user_not_found" {
		t.Fatalf("error %q, want user_not_found", code)
	}
}

func TestAuth_ValidToken(t *testing.T) {
	users := newStubUserSource(models.User{ID: 7, Username: "bob", Email: "bob@bobsgarage.com"})
	router := authRouter(users)

	tok, err := security.GenerateAccessToken(testAccessSecret, 7, "bob@bobsgarage.com", false, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	rec := doRequest(router, "/protected", tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.ID != 7 || body.Username != "bob" {
		t.Fatalf("resolved wrong user: %+v", body)
	}

	// The last-login stamp runs off the request goroutine.
	deadline := time.Now().Add(time.Second)
	for users.touchedCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("last login was never touched")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRequireAdmin_Forbidden(t *testing.T) {
	users := newStubUserSource(models.User{ID: 7, Username: "bob"})
	router := authRouter(users)

	tok, err := security.GenerateAccessToken(testAccessSecret, 7, "bob@bobsgarage.com", false, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	rec := doRequest(router, "/admin", tok)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status %d, want 403", rec.Code)
	}
	if code := errorCode(t, rec); code != "forbidden" {
		t.Fatalf("error %q, want forbidden", code)
	}
}

func TestRequireAdmin_Allowed(t *testing.T) {
	users := newStubUserSource(models.User{ID: 1, Username: "bob", IsAdmin: true})
	router := authRouter(users)

	tok, err := security.GenerateAccessToken(testAccessSecret, 1, "bob@bobsgarage.com", true, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	rec := doRequest(router, "/admin", tok)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status %d, want 204: %s", rec.Code, rec.Body.String())
	}
}

func TestOptionalAuth_NeverRejects(t *testing.T) {
	users := newStubUserSource(models.User{ID: 7, Username: "bob", IsAdmin: true})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/public", OptionalAuth(testAccessSecret, users, zerolog.Nop()), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"resolved": ok, "admin": ok && user.IsAdmin})
	})

	check := func(token string, wantResolved bool) {
		t.Helper()
		rec := doRequest(router, "/public", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("status %d, want 200", rec.Code)
		}
		var body struct {
			Resolved bool `json:"resolved"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if body.Resolved != wantResolved {
			t.Fatalf("resolved=%t, want %t (token %q)", body.Resolved, wantResolved, token)
		}
	}

	// Anonymous, garbage, expired: all pass through unresolved.
	check("", false)
	check("garbage", false)
	expired, err := security.GenerateAccessToken(testAccessSecret, 7, "bob@bobsgarage.com", true, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	check(expired, false)

	valid, err := security.GenerateAccessToken(testAccessSecret, 7, "bob@bobsgarage.com", true, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	check(valid, true)
}
