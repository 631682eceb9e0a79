// Package session implements the login gate: a two-state machine (anonymous
// or authenticated) whose identity survives restarts through a durable slot.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/dwoolworth/bizdesk"
)

// SlotKey is the backend key holding the authenticated user.
const SlotKey = "currentUser"

// Gate tracks the current user and answers authorization questions.
type Gate struct {
	verifier Verifier
	slot     bizdesk.Backend
	logger   *zap.Logger

	mu   sync.RWMutex
	user *User
}

// New returns a gate restored from the slot. No stored identity leaves it
// anonymous; a stored identity that cannot be parsed is an error.
func New(ctx context.Context, verifier Verifier, slot bizdesk.Backend, logger *zap.Logger) (*Gate, error) {
	if verifier == nil || slot == nil {
		return nil, fmt.Errorf("session: verifier and slot are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gate{verifier: verifier, slot: slot, logger: logger}

	blob, err := slot.Get(ctx, SlotKey)
	if errors.Is(err, bizdesk.ErrBlobNotFound) {
		return g, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read slot: %w", err)
	}

	var u User
	dec := json.NewDecoder(bytes.NewReader(blob))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&u); err != nil {
		return nil, fmt.Errorf("session: malformed %s slot: %w", SlotKey, err)
	}
	if u.Username == "" || u.Role == "" {
		return nil, fmt.Errorf("session: malformed %s slot: missing username or role", SlotKey)
	}

	g.user = &u
	logger.Debug("session restored", zap.String("user", u.Username))
	return g, nil
}

// Login authenticates and persists the user to the slot. On failure the gate
// is anonymous and ErrInvalidCredentials is returned.
func (g *Gate) Login(ctx context.Context, username, password string) (User, error) {
	u, err := g.verifier.Verify(ctx, username, password)
	if err != nil {
		g.logger.Info("login failed", zap.String("user", username))
		if clearErr := g.clear(ctx); clearErr != nil {
			return User{}, errors.Join(err, clearErr)
		}
		return User{}, err
	}

	blob, err := json.Marshal(u)
	if err != nil {
		return User{}, err
	}
	if err := g.slot.Put(ctx, SlotKey, blob); err != nil {
		return User{}, fmt.Errorf("session: persist login: %w", err)
	}

	g.mu.Lock()
	g.user = &u
	g.mu.Unlock()

	g.logger.Info("login", zap.String("user", u.Username), zap.String("role", u.Role))
	return u, nil
}

// Logout clears the slot and makes the gate anonymous.
func (g *Gate) Logout(ctx context.Context) error {
	if err := g.clear(ctx); err != nil {
		return err
	}
	g.logger.Info("logout")
	return nil
}

func (g *Gate) clear(ctx context.Context) error {
	g.mu.Lock()
	g.user = nil
	g.mu.Unlock()
	if err := g.slot.Delete(ctx, SlotKey); err != nil {
		return fmt.Errorf("session: clear slot: %w", err)
	}
	return nil
}

// Current returns the authenticated user, or false when anonymous.
func (g *Gate) Current() (User, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.user == nil {
		return User{}, false
	}
	return *g.user, true
}

// IsAuthorized reports whether the current user is admin or has the given
// module tag as role. Anonymous is never authorized.
func (g *Gate) IsAuthorized(tag string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.user == nil {
		return false
	}
	return g.user.Role == AdminRole || g.user.Role == tag
}

// Require returns nil when IsAuthorized(tag), otherwise an error wrapping ErrForbidden.
func (g *Gate) Require(tag string) error {
	if g.IsAuthorized(tag) {
		return nil
	}
	if _, ok := g.Current(); !ok {
		return fmt.Errorf("%w: not logged in", ErrForbidden)
	}
	return fmt.Errorf("%w: module %q", ErrForbidden, tag)
}
