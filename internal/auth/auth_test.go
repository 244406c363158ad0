package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fkhayef/tripsplit/internal/user"
)

type memUsers struct {
	byEmail map[string]*user.User
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*user.User{}}
}

func (m *memUsers) Create(ctx context.Context, email, name, passwordHash string) (*user.User, error) {
	if _, ok := m.byEmail[email]; ok {
		return nil, user.ErrEmailAlreadyInUse
	}
	u := &user.User{ID: int64(len(m.byEmail) + 1), Email: email, Name: name, PasswordHash: passwordHash, CreatedAt: time.Now()}
	m.byEmail[email] = u
	return u, nil
}

func (m *memUsers) GetByID(ctx context.Context, id int64) (*user.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return m.byEmail[email], nil
}

func (m *memUsers) UpdateName(ctx context.Context, id int64, name string) (*user.User, error) {
	return nil, nil
}

func TestJWTManagerRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, _, err := m.Generate(42, "ana@example.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	userID, err := m.ValidateSession(token)
	if err != nil {
		t.Fatalf("ValidateSession() error = %v", err)
	}
	if userID != 42 {
		t.Errorf("userID = %d, want 42", userID)
	}
}

func TestJWTManagerRejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	token, _, err := m.Generate(42, "ana@example.com")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("wrong key", func(t *testing.T) {
		other := NewJWTManager("other", time.Hour)
		if _, err := other.ValidateSession(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWTManager("secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		if _, err := later.ValidateSession(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := m.ValidateSession("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("error = %v, want ErrInvalidToken", err)
		}
	})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(newMemUsers(), NewJWTManager("secret", time.Hour))
	ctx := context.Background()

	if _, err := svc.Register(ctx, &RegisterRequest{Email: "ana@example.com", Name: "Ana", Password: "short"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("Register() weak password error = %v", err)
	}

	resp, err := svc.Register(ctx, &RegisterRequest{Email: "ana@example.com", Name: "Ana", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if resp.Token == "" || resp.User.Email != "ana@example.com" {
		t.Errorf("Register() = %+v", resp)
	}

	if _, err := svc.Register(ctx, &RegisterRequest{Email: "ana@example.com", Name: "Ana", Password: "correct horse"}); !errors.Is(err, user.ErrEmailAlreadyInUse) {
		t.Errorf("duplicate Register() error = %v", err)
	}

	if _, err := svc.Login(ctx, &LoginRequest{Email: "ana@example.com", Password: "wrong password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() wrong password error = %v", err)
	}
	if _, err := svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "correct horse"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() unknown email error = %v", err)
	}
	if _, err := svc.Login(ctx, &LoginRequest{Email: "ana@example.com", Password: "correct horse"}); err != nil {
		t.Errorf("Login() error = %v", err)
	}
}

func TestLoginHandlerUnauthorized(t *testing.T) {
	h := NewHandler(NewService(newMemUsers(), NewJWTManager("secret", time.Hour)))

	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"x@example.com","password":"whatever1"}`))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, r)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
