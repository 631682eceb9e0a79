// Package modules holds one service per business module. Services compose the
// record collections of their module and check the session gate before every call.
package modules

import (
	"context"

	"github.com/dwoolworth/bizdesk"
	"github.com/dwoolworth/bizdesk/session"
)

// ErrForbidden is returned when the current user may not use a module.
var ErrForbidden = session.ErrForbidden

// Authorizer is the part of the session gate the services need.
type Authorizer interface {
	Require(tag string) error
	Current() (session.User, bool)
}

// Resource is gated CRUD over one collection. Add and Update validate the
// record (required, enum, bounds and references) before it is stored.
type Resource[T any] struct {
	tag   string
	gate  Authorizer
	coll  *bizdesk.Collection[T]
	valid bizdesk.Check[T]
}

func newResource[T any](db *bizdesk.DB, gate Authorizer, tag string) (*Resource[T], error) {
	coll, err := bizdesk.NewCollection[T](db)
	if err != nil {
		return nil, err
	}
	return &Resource[T]{tag: tag, gate: gate, coll: coll, valid: bizdesk.ValidRecord[T](db)}, nil
}

// Collection returns the underlying store collection, bypassing the gate.
func (r *Resource[T]) Collection() *bizdesk.Collection[T] {
	return r.coll
}

// Add stores rec if it is valid once defaults are filled in.
func (r *Resource[T]) Add(ctx context.Context, rec *T) (string, error) {
	if err := r.gate.Require(r.tag); err != nil {
		return "", err
	}
	return r.coll.Add(ctx, rec, r.valid)
}

// Update merges patch into the record and stores it if the result is valid.
func (r *Resource[T]) Update(ctx context.Context, id string, patch bizdesk.Patch) (T, error) {
	if err := r.gate.Require(r.tag); err != nil {
		var zero T
		return zero, err
	}
	return r.coll.Mutate(ctx, id, func(rec *T) error {
		if err := bizdesk.ApplyPatch(rec, patch); err != nil {
			return err
		}
		return r.valid(ctx, rec)
	})
}

// Remove deletes the record; a missing id is not an error.
func (r *Resource[T]) Remove(ctx context.Context, id string) error {
	if err := r.gate.Require(r.tag); err != nil {
		return err
	}
	return r.coll.Remove(ctx, id)
}

// Get returns one record.
func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	if err := r.gate.Require(r.tag); err != nil {
		var zero T
		return zero, err
	}
	return r.coll.Get(ctx, id)
}

// List returns every record in insertion order.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	if err := r.gate.Require(r.tag); err != nil {
		return nil, err
	}
	return r.coll.All(ctx)
}

// Search returns records where any of fields contains term, ignoring case.
func (r *Resource[T]) Search(ctx context.Context, term string, fields ...string) ([]T, error) {
	if err := r.gate.Require(r.tag); err != nil {
		return nil, err
	}
	match, err := bizdesk.ContainsFold[T](term, fields...)
	if err != nil {
		return nil, err
	}
	return r.coll.Query(ctx, match)
}

// mutate is the gated form of Collection.Mutate used by the service helpers.
func (r *Resource[T]) mutate(ctx context.Context, id string, fn func(*T) error) (T, error) {
	if err := r.gate.Require(r.tag); err != nil {
		var zero T
		return zero, err
	}
	return r.coll.Mutate(ctx, id, fn)
}
