package types

import (
	"testing"
)

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleFarmer, RoleCustomer, RoleMulti} {
		if !r.Valid() {
			t.Errorf("Role %q should be valid", r)
		}
	}
	for _, r := range []Role{"", "admin", "Farmer"} {
		if r.Valid() {
			t.Errorf("Role %q should be invalid", r)
		}
	}
}

func TestRoleComplement(t *testing.T) {
	if c, ok := RoleFarmer.Complement(); !ok || c != RoleCustomer {
		t.Errorf("Complement of farmer = %q, %v", c, ok)
	}
	if c, ok := RoleCustomer.Complement(); !ok || c != RoleFarmer {
		t.Errorf("Complement of customer = %q, %v", c, ok)
	}
	if _, ok := RoleMulti.Complement(); ok {
		t.Error("Multi should have no complement")
	}
}

func TestResolveRole(t *testing.T) {
	tests := []struct {
		name         string
		user         User
		cached       Role
		wantRole     Role
		wantResolved bool
	}{
		{
			name:         "server role farmer consistent with flag",
			user:         User{Role: RoleFarmer, HasFarmer: true},
			wantRole:     RoleFarmer,
			wantResolved: true,
		},
		{
			name:         "server role customer consistent with flag",
			user:         User{Role: RoleCustomer, HasCustomer: true},
			wantRole:     RoleCustomer,
			wantResolved: true,
		},
		{
			name: "server role inconsistent with flags falls through",
			// Claims farmer but holds only the customer identity.
			user:         User{Role: RoleFarmer, HasCustomer: true},
			wantRole:     RoleCustomer,
			wantResolved: true,
		},
		{
			name:         "dual identity no server role no cache requires selection",
			user:         User{HasFarmer: true, HasCustomer: true},
			wantRole:     RoleMulti,
			wantResolved: false,
		},
		{
			name:         "dual identity resolved by cached farmer",
			user:         User{HasFarmer: true, HasCustomer: true},
			cached:       RoleFarmer,
			wantRole:     RoleFarmer,
			wantResolved: true,
		},
		{
			name:         "dual identity resolved by cached customer",
			user:         User{HasFarmer: true, HasCustomer: true},
			cached:       RoleCustomer,
			wantRole:     RoleCustomer,
			wantResolved: true,
		},
		{
			name:         "dual identity ignores cached multi",
			user:         User{HasFarmer: true, HasCustomer: true},
			cached:       RoleMulti,
			wantRole:     RoleMulti,
			wantResolved: false,
		},
		{
			name:         "farmer flag only",
			user:         User{HasFarmer: true},
			wantRole:     RoleFarmer,
			wantResolved: true,
		},
		{
			name:         "customer flag only",
			user:         User{HasCustomer: true},
			wantRole:     RoleCustomer,
			wantResolved: true,
		},
		{
			name: "cached role never overrides a single identity",
			// Cached farmer is stale: the account only holds customer now.
			user:         User{HasCustomer: true},
			cached:       RoleFarmer,
			wantRole:     RoleCustomer,
			wantResolved: true,
		},
		{
			name:         "no identities",
			user:         User{},
			wantRole:     "",
			wantResolved: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, resolved := ResolveRole(tt.user, tt.cached)
			if role != tt.wantRole || resolved != tt.wantResolved {
				t.Errorf("ResolveRole(%+v, %q) = (%q, %v), want (%q, %v)",
					tt.user, tt.cached, role, resolved, tt.wantRole, tt.wantResolved)
			}
		})
	}
}

func TestResolveRoleNeverContradictsFlags(t *testing.T) {
	// The resolved role must always be one the account actually holds.
	users := []User{
		{HasFarmer: true},
		{HasCustomer: true},
		{HasFarmer: true, HasCustomer: true},
		{Role: RoleFarmer, HasFarmer: true, HasCustomer: true},
		{Role: RoleCustomer, HasFarmer: true, HasCustomer: true},
		{Role: RoleFarmer, HasCustomer: true},
	}
	caches := []Role{"", RoleFarmer, RoleCustomer, RoleMulti}

	for _, u := range users {
		for _, cached := range caches {
			role, resolved := ResolveRole(u, cached)
			if !resolved {
				continue
			}
			if role == RoleFarmer && !u.HasFarmer {
				t.Errorf("ResolveRole(%+v, %q) resolved farmer without the flag", u, cached)
			}
			if role == RoleCustomer && !u.HasCustomer {
				t.Errorf("ResolveRole(%+v, %q) resolved customer without the flag", u, cached)
			}
		}
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []string{OrderPending, OrderConfirmed, OrderDelivered, OrderCancelled} {
		if !ValidOrderStatus(s) {
			t.Errorf("status %q should be valid", s)
		}
	}
	for _, s := range []string{"", "shipped", "Pending"} {
		if ValidOrderStatus(s) {
			t.Errorf("status %q should be invalid", s)
		}
	}
}
