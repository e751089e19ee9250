package gate

import (
	"context"
	"slices"
	"sync"
)

// Profile is a named set of permissions, e.g. the "clerk" staff role.
type Profile interface {
	ID() uint
	Name() string
	HasPermission(permission Permission) bool
	Permissions() []Permission
}

// ProfileResolver resolves a subject to its profile. A nil profile with a
// nil error means the subject has none.
type ProfileResolver[U any] interface {
	Resolve(ctx context.Context, user U) (Profile, error)
}

// StaticProfile is an immutable in-memory profile. Permissions are kept
// sorted and de-duplicated.
type StaticProfile struct {
	id          uint
	name        string
	permissions []Permission
}

func NewStaticProfile(id uint, name string, permissions ...Permission) *StaticProfile {
	perms := slices.Clone(permissions)
	slices.Sort(perms)
	return &StaticProfile{id: id, name: name, permissions: slices.Compact(perms)}
}

func (p *StaticProfile) ID() uint     { return p.id }
func (p *StaticProfile) Name() string { return p.name }

// Permissions returns a copy, sorted.
func (p *StaticProfile) Permissions() []Permission {
	out := make([]Permission, len(p.permissions))
	copy(out, p.permissions)
	return out
}

// HasPermission checks the requested permission, honouring wildcards.
func (p *StaticProfile) HasPermission(requested Permission) bool {
	return slices.ContainsFunc(p.permissions, func(perm Permission) bool {
		return perm.Matches(requested)
	})
}

// StaticResolver maps subjects to profiles in memory. It is safe for
// concurrent use.
type StaticResolver[U comparable] struct {
	mu       sync.RWMutex
	profiles map[U]Profile
}

func NewStaticResolver[U comparable]() *StaticResolver[U] {
	return &StaticResolver[U]{profiles: make(map[U]Profile)}
}

// Set assigns a profile to a subject; a nil profile removes it.
func (r *StaticResolver[U]) Set(user U, profile Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile == nil {
		delete(r.profiles, user)
		return
	}
	r.profiles[user] = profile
}

func (r *StaticResolver[U]) Resolve(_ context.Context, user U) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.profiles[user], nil
}
