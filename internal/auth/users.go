// Package auth provides HTTP Basic authentication backed by a fixed set of
// in-memory accounts, plus an ordered policy table deciding which roles may
// reach which method/path combinations.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Role names an authorization level granted to an account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Account is the plaintext seed for one account, consumed once at startup.
type Account struct {
	Name     string
	Password string
	Role     Role
}

// User is an authenticated principal.
type User struct {
	Name string
	Role Role
}

type storedUser struct {
	hash []byte
	role Role
}

// UserStore keeps the configured accounts with bcrypt password hashes.
// Passwords are hashed once at construction and the plaintext is dropped.
type UserStore struct {
	users map[string]storedUser
}

// NewUserStore hashes each account password and builds the lookup table.
func NewUserStore(accounts ...Account) (*UserStore, error) {
	users := make(map[string]storedUser, len(accounts))
	for _, account := range accounts {
		if account.Name == "" {
			return nil, fmt.Errorf("auth: account name must not be empty")
		}
		if _, exists := users[account.Name]; exists {
			return nil, fmt.Errorf("auth: duplicate account %q", account.Name)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("auth: hash password for %q: %w", account.Name, err)
		}
		users[account.Name] = storedUser{hash: hash, role: account.Role}
	}
	return &UserStore{users: users}, nil
}

// Authenticate verifies a name/password pair and returns the matching
// principal.
func (s *UserStore) Authenticate(name, password string) (User, bool) {
	stored, ok := s.users[name]
	if !ok {
		return User{}, false
	}
	if err := bcrypt.CompareHashAndPassword(stored.hash, []byte(password)); err != nil {
		return User{}, false
	}
	return User{Name: name, Role: stored.role}, true
}
