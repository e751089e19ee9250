package gate

import "context"

// HybridGate layers resource policies on top of profile permissions.
// A subject must hold resource:action in its profile; when a policy is
// registered for the resource type and a concrete resource is supplied,
// the policy must also allow it.
type HybridGate[U comparable] struct {
	resolver ProfileResolver[U]
	policies map[string]Policy[U]
	observe  Observer
}

// NewHybridGate creates a hybrid gate backed by resolver.
func NewHybridGate[U comparable](resolver ProfileResolver[U]) *HybridGate[U] {
	return &HybridGate[U]{
		resolver: resolver,
		policies: make(map[string]Policy[U]),
	}
}

// Register adds a resource-specific policy, typically an ownership check.
func (g *HybridGate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Observe installs a decision observer.
func (g *HybridGate[U]) Observe(o Observer) {
	g.observe = o
}

func (g *HybridGate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	err := g.authorize(ctx, user, action, resourceType, resource)
	if g.observe != nil {
		g.observe(resourceType, action, err == nil)
	}
	return err
}

func (g *HybridGate[U]) authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	if !g.CanProfile(ctx, user, action, resourceType) {
		return ErrUnauthorized
	}
	if resource == nil {
		return nil
	}
	if p, ok := g.policies[resourceType]; ok && !p.Can(ctx, user, action, resource) {
		return ErrUnauthorized
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *HybridGate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}

// CanProfile checks only the profile permission. Templates use it to show
// staff links before any resource is loaded.
func (g *HybridGate[U]) CanProfile(ctx context.Context, user U, action Action, resourceType string) bool {
	profile, ok := g.Profile(ctx, user)
	if !ok {
		return false
	}
	return profile.HasPermission(NewPermission(resourceType, action))
}

// Profile resolves the subject's profile. ok is false for anonymous
// subjects, resolver errors and subjects without a profile.
func (g *HybridGate[U]) Profile(ctx context.Context, user U) (Profile, bool) {
	var zero U
	if user == zero {
		return nil, false
	}
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil || profile == nil {
		return nil, false
	}
	return profile, true
}
