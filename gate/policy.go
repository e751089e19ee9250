package gate

import "context"

// Policy defines authorization rules for a resource type.
type Policy[U any] interface {
	// Can reports whether user may perform action on resource.
	// resource is nil for collection-level checks (list, create).
	Can(ctx context.Context, user U, action Action, resource any) bool
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc[U any] func(ctx context.Context, user U, action Action, resource any) bool

func (f PolicyFunc[U]) Can(ctx context.Context, user U, action Action, resource any) bool {
	return f(ctx, user, action, resource)
}
