package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/plannr/event-planner/internal/core/domain"
)

type stubAuthenticator struct {
	tokens map[string]*domain.User
	seen   []string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*domain.User, error) {
	s.seen = append(s.seen, token)
	if u, ok := s.tokens[token]; ok {
		return u, nil
	}
	return nil, domain.ErrInvalidToken
}

func newStubAuthenticator() *stubAuthenticator {
	return &stubAuthenticator{tokens: map[string]*domain.User{
		"good":  {ID: "u1", Email: "alice@example.com"},
		"other": {ID: "u2", Email: "bob@example.com"},
	}}
}

func TestAuthMiddleware_BearerToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(newStubAuthenticator(), "token")(func(c echo.Context) error {
		called = true
		user, _ := c.Get(UserKey).(*domain.User)
		if user == nil || user.ID != "u1" {
			t.Fatalf("user not set: %+v", user)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_CookieTakesPrecedence(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "other"})
	req.Header.Set(echo.HeaderAuthorization, "Bearer good")
	c := e.NewContext(req, httptest.NewRecorder())

	authn := newStubAuthenticator()
	handler := Auth(authn, "token")(func(c echo.Context) error {
		if c.Get(UserKey).(*domain.User).ID != "u2" {
			t.Fatalf("expected cookie user")
		}
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(authn.seen) != 1 || authn.seen[0] != "other" {
		t.Fatalf("expected only the cookie token to be checked, got %v", authn.seen)
	}
}

func TestAuthMiddleware_EmptyCookieFallsBackToHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: ""})
	req.Header.Set(echo.HeaderAuthorization, "bearer good")
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth(newStubAuthenticator(), "token")(func(c echo.Context) error { return nil })
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	cases := map[string]string{
		"no header":     "",
		"wrong scheme":  "Token abc",
		"missing token": "Bearer",
		"empty bearer":  "Bearer   ",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set(echo.HeaderAuthorization, header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			handler := Auth(newStubAuthenticator(), "token")(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			if err := handler(c); !errors.Is(err, domain.ErrAuthRequired) {
				t.Fatalf("expected ErrAuthRequired, got %v", err)
			}
		})
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth(newStubAuthenticator(), "token")(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
