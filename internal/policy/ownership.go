package policy

import (
	"context"
	"strconv"

	"github.com/diewo77/go-bookstore/gate"
	"github.com/diewo77/go-bookstore/internal/metrics"
)

// Ownable is implemented by resources that belong to one customer.
type Ownable interface {
	GetUserID() string
}

// OwnershipPolicy allows any action on a resource owned by the subject.
type OwnershipPolicy struct{}

func NewOwnershipPolicy() *OwnershipPolicy { return &OwnershipPolicy{} }

func (OwnershipPolicy) Can(_ context.Context, user string, _ gate.Action, resource any) bool {
	o, ok := resource.(Ownable)
	if !ok {
		return false
	}
	owner := o.GetUserID()
	return owner != "" && owner == user
}

// Resource types guarded by ownership.
const (
	ResourceCartItem = "cart_item"
	ResourceOrder    = "order"
)

// NewCustomerGate returns the gate used for customer-owned resources.
func NewCustomerGate() *gate.Gate[string] {
	g := gate.NewGate[string]()
	g.Register(ResourceCartItem, NewOwnershipPolicy())
	g.Register(ResourceOrder, NewOwnershipPolicy())
	g.Observe(observeDecision)
	return g
}

func observeDecision(resource string, action gate.Action, allowed bool) {
	metrics.AuthzDecisionsTotal.WithLabelValues(resource, string(action), strconv.FormatBool(allowed)).Inc()
}
