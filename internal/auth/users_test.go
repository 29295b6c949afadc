package auth

import (
	"strings"
	"testing"
)

func newTestUserStore(t *testing.T) *UserStore {
	t.Helper()
	store, err := NewUserStore(
		Account{Name: "user", Password: "password", Role: RoleUser},
		Account{Name: "admin", Password: "admin123", Role: RoleAdmin},
	)
	if err != nil {
		t.Fatalf("NewUserStore: %v", err)
	}
	return store
}

func TestAuthenticate(t *testing.T) {
	store := newTestUserStore(t)

	tests := []struct {
		name     string
		account  string
		password string
		wantOK   bool
		wantRole Role
	}{
		{"known user", "user", "password", true, RoleUser},
		{"known admin", "admin", "admin123", true, RoleAdmin},
		{"wrong password", "admin", "wrong", false, ""},
		{"unknown account", "ghost", "password", false, ""},
		{"empty password", "user", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, ok := store.Authenticate(tt.account, tt.password)
			if ok != tt.wantOK {
				t.Fatalf("Authenticate(%q) ok = %v, want %v", tt.account, ok, tt.wantOK)
			}
			if ok && user.Role != tt.wantRole {
				t.Fatalf("Authenticate(%q) role = %s, want %s", tt.account, user.Role, tt.wantRole)
			}
		})
	}
}

func TestNewUserStoreRejectsDuplicates(t *testing.T) {
	_, err := NewUserStore(
		Account{Name: "user", Password: "a", Role: RoleUser},
		Account{Name: "user", Password: "b", Role: RoleAdmin},
	)
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate account error, got %v", err)
	}
}

func TestNewUserStoreRejectsEmptyName(t *testing.T) {
	_, err := NewUserStore(Account{Name: "", Password: "a", Role: RoleUser})
	if err == nil {
		t.Fatalf("expected empty name error")
	}
}
