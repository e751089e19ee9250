package gate_test

import (
	"testing"

	"github.com/diewo77/go-bookstore/gate"
)

func TestPermission_Parse(t *testing.T) {
	res, act := gate.NewPermission("book", gate.ActionCreate).Parse()
	if res != "book" || act != gate.ActionCreate {
		t.Errorf("Parse() = %q, %q", res, act)
	}
	res, act = gate.Permission("malformed").Parse()
	if res != "" || act != "" {
		t.Errorf("malformed Parse() = %q, %q", res, act)
	}
}

func TestPermission_Matches(t *testing.T) {
	tests := []struct {
		granted   gate.Permission
		requested gate.Permission
		want      bool
	}{
		{"book:create", "book:create", true},
		{"book:create", "book:delete", false},
		{"book:*", "book:delete", true},
		{"book:*", "order:update", false},
		{gate.PermissionSuperAdmin, "inventory:view", true},
		{"malformed", "malformed:*", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.granted)+"->"+string(tt.requested), func(t *testing.T) {
			if got := tt.granted.Matches(tt.requested); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
