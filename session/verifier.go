package session

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// AdminRole may use every module.
const AdminRole = "admin"

// User is the authenticated identity kept in the session slot.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Verifier checks a username/password pair and returns the matching user.
// A mismatch must be reported as ErrInvalidCredentials.
type Verifier interface {
	Verify(ctx context.Context, username, password string) (User, error)
}

// Entry is one account of a users file.
type Entry struct {
	ID           string `yaml:"id"`
	Username     string `yaml:"username"`
	Name         string `yaml:"name"`
	Role         string `yaml:"role"`
	PasswordHash string `yaml:"password_hash"`
}

type usersFile struct {
	Users []Entry `yaml:"users"`
}

// StaticVerifier checks credentials against a fixed table of bcrypt hashes.
type StaticVerifier struct {
	users map[string]account
	// compared against when the username is unknown, so both paths cost one bcrypt
	dummy []byte
}

type account struct {
	user User
	hash []byte
}

// NewStaticVerifier builds a verifier from entries. Usernames must be unique
// and every entry needs a role and a bcrypt hash.
func NewStaticVerifier(entries []Entry) (*StaticVerifier, error) {
	v := &StaticVerifier{users: make(map[string]account, len(entries))}
	for i, e := range entries {
		if e.Username == "" || e.Role == "" {
			return nil, fmt.Errorf("session: user %d needs a username and a role", i)
		}
		if _, dup := v.users[e.Username]; dup {
			return nil, fmt.Errorf("session: duplicate user %q", e.Username)
		}
		if _, err := bcrypt.Cost([]byte(e.PasswordHash)); err != nil {
			return nil, fmt.Errorf("session: user %q: invalid password hash: %w", e.Username, err)
		}
		id := e.ID
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		v.users[e.Username] = account{
			user: User{ID: id, Username: e.Username, Name: e.Name, Role: e.Role},
			hash: []byte(e.PasswordHash),
		}
		if v.dummy == nil {
			v.dummy = []byte(e.PasswordHash)
		}
	}
	return v, nil
}

// LoadUsersFile reads a YAML users file:
//
//	users:
//	  - username: admin
//	    name: Administrador
//	    role: admin
//	    password_hash: $2a$10$...
func LoadUsersFile(path string) (*StaticVerifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("session: read users file: %w", err)
	}
	var f usersFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("session: parse users file %s: %w", path, err)
	}
	if len(f.Users) == 0 {
		return nil, fmt.Errorf("session: users file %s lists no users", path)
	}
	return NewStaticVerifier(f.Users)
}

// DefaultUsers is the built-in development table: one account per module plus
// admin, each with password "<username>123".
var DefaultUsers = []Entry{
	{ID: "1", Username: "admin", Name: "Administrador", Role: AdminRole},
	{ID: "2", Username: "compras", Name: "Gestor de Compras", Role: "compras"},
	{ID: "3", Username: "pcp", Name: "Gestor de PCP", Role: "pcp"},
	{ID: "4", Username: "pd", Name: "Gestor de P&D", Role: "pd"},
	{ID: "5", Username: "garantia", Name: "Gestor de Garantia", Role: "garantia"},
	{ID: "6", Username: "regulatorios", Name: "Gestor de Regulatórios", Role: "regulatorios"},
	{ID: "7", Username: "comercial", Name: "Gestor Comercial", Role: "comercial"},
}

// NewDefaultVerifier hashes the DefaultUsers passwords at bcrypt.MinCost.
// The passwords are public, so the cost only has to keep startup fast.
func NewDefaultVerifier() (*StaticVerifier, error) {
	entries := make([]Entry, len(DefaultUsers))
	for i, e := range DefaultUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(e.Username+"123"), bcrypt.MinCost)
		if err != nil {
			return nil, err
		}
		e.PasswordHash = string(hash)
		entries[i] = e
	}
	return NewStaticVerifier(entries)
}

// HashPassword returns a bcrypt hash suitable for a users file.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify implements Verifier.
func (v *StaticVerifier) Verify(ctx context.Context, username, password string) (User, error) {
	acc, ok := v.users[username]
	if !ok {
		if v.dummy != nil {
			_ = bcrypt.CompareHashAndPassword(v.dummy, []byte(password))
		}
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return acc.user, nil
}

// Usernames returns the known usernames.
func (v *StaticVerifier) Usernames() []string {
	names := make([]string, 0, len(v.users))
	for n := range v.users {
		names = append(names, n)
	}
	return names
}
