package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/quotapay/quotapay/internal/pkg/identity"
	"github.com/quotapay/quotapay/internal/pkg/usercontext"
)

type fakeVerifier struct {
	claims *identity.Claims
	err    error
}

func (f fakeVerifier) Verify(string) (*identity.Claims, error) {
	return f.claims, f.err
}

func newAuthTestApp(v TokenVerifier) *fiber.App {
	app := fiber.New()
	app.Get("/me", RequireAuth(v), func(c *fiber.Ctx) error {
		return c.JSON(usercontext.GetUserContext(c))
	})
	return app
}

func TestRequireAuth(t *testing.T) {
	app := newAuthTestApp(fakeVerifier{claims: &identity.Claims{Subject: "user-1", Email: "a@b.c"}})

	req := httptest.NewRequest("GET", "/me", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("no header: status = %d, want 401", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("valid token: status = %d, want 200", resp.StatusCode)
	}
}

func TestRequireAuthRejectsInvalidToken(t *testing.T) {
	app := newAuthTestApp(fakeVerifier{err: errors.New("expired")})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		token, ok := extractBearerToken(tt.header)
		if token != tt.token || ok != tt.ok {
			t.Fatalf("extractBearerToken(%q) = (%q, %v), want (%q, %v)", tt.header, token, ok, tt.token, tt.ok)
		}
	}
}
