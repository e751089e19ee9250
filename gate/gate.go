// Package gate provides a Gate/Policy authorization system. A Gate is a
// registry of policies keyed by resource type; each Policy decides whether
// a subject may perform an action on a resource. The package has no
// dependency on domain models.
//
// Subjects are generic: the storefront uses Gate[string] keyed by user id.
package gate

import (
	"context"
	"errors"
)

var (
	// ErrUnauthorized is returned for anonymous subjects and denied actions.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoPolicyDefined is returned by Gate for an unregistered resource type.
	ErrNoPolicyDefined = errors.New("no policy defined for resource")
)

// Observer is notified of every authorization decision.
type Observer func(resourceType string, action Action, allowed bool)

// Gate is the central authorization checkpoint.
// U is the subject type; its zero value means "anonymous".
type Gate[U comparable] struct {
	policies map[string]Policy[U]
	observe  Observer
}

// NewGate creates an empty Gate ready to register policies.
func NewGate[U comparable]() *Gate[U] {
	return &Gate[U]{policies: make(map[string]Policy[U])}
}

// Register adds a policy for a given resource type (e.g., "cart_item").
// Overwrites any existing policy for that type.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Observe installs a decision observer, replacing any previous one.
func (g *Gate[U]) Observe(o Observer) {
	g.observe = o
}

// Authorize returns ErrUnauthorized for an anonymous subject or a denied
// action, and ErrNoPolicyDefined if resourceType has no registered policy.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	err := g.authorize(ctx, user, action, resourceType, resource)
	if g.observe != nil {
		g.observe(resourceType, action, err == nil)
	}
	return err
}

func (g *Gate[U]) authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	var zero U
	if user == zero {
		return ErrUnauthorized
	}
	p, ok := g.policies[resourceType]
	if !ok {
		return ErrNoPolicyDefined
	}
	if !p.Can(ctx, user, action, resource) {
		return ErrUnauthorized
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}
