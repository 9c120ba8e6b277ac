package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func identityWith(role Role, extra ...Capability) *Identity {
	return &Identity{
		UserID:       1,
		Email:        "user@example.com",
		Role:         role,
		Capabilities: NewCapabilitySet(role, extra...),
	}
}

func TestDecideNilIdentityDenied(t *testing.T) {
	require.Equal(t, Denied, Decide(nil, Policy{Capability: CapLeadsView}))
	require.Equal(t, Denied, Decide(nil, Policy{Roles: []Role{RoleAdmin}}))
	require.Equal(t, Denied, Decide(nil, Policy{}))
}

func TestDecideRolesCheckedBeforeCapability(t *testing.T) {
	// Sales holds dashboard.view but lacks the admin role; the role
	// requirement alone must deny the request.
	sales := identityWith(RoleSales)
	decision := Decide(sales, Policy{Roles: []Role{RoleAdmin}, Capability: CapDashboardView})
	require.Equal(t, Denied, decision)

	admin := identityWith(RoleAdmin)
	require.Equal(t, Allowed, Decide(admin, Policy{Roles: []Role{RoleAdmin}, Capability: CapDashboardView}))
}

func TestDecideCapability(t *testing.T) {
	sales := identityWith(RoleSales)
	require.Equal(t, Allowed, Decide(sales, Policy{Capability: CapLeadsView}))
	require.Equal(t, Denied, Decide(sales, Policy{Capability: CapLeadsImport}))
	require.Equal(t, Denied, Decide(sales, Policy{Capability: CapClearSystemData}))
}

func TestDecideExtraCapabilitiesUnion(t *testing.T) {
	sales := identityWith(RoleSales, CapLeadsImport)
	require.Equal(t, Allowed, Decide(sales, Policy{Capability: CapLeadsImport}))
	// Unrelated grants stay denied.
	require.Equal(t, Denied, Decide(sales, Policy{Capability: CapUsersEdit}))
}

func TestDecideAnyOfRoles(t *testing.T) {
	manager := identityWith(RoleManager)
	require.Equal(t, Allowed, Decide(manager, Policy{Roles: []Role{RoleAdmin, RoleManager}}))
	require.Equal(t, Denied, Decide(manager, Policy{Roles: []Role{RoleAdmin}}))
}

func TestDecideIsPure(t *testing.T) {
	id := identityWith(RoleSales)
	pol := Policy{Capability: CapLeadsView}
	first := Decide(id, pol)
	for i := 0; i < 100; i++ {
		require.Equal(t, first, Decide(id, pol))
	}
}

func TestManagerDeniedSystemClearData(t *testing.T) {
	manager := identityWith(RoleManager)
	require.Equal(t, Denied, Decide(manager, Policy{Capability: CapClearSystemData}))
	require.Equal(t, Denied, Decide(manager, Policy{Capability: CapUsersEdit}))
	require.Equal(t, Allowed, Decide(manager, Policy{Capability: CapUsersView}))
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"admin", "manager", "sales"} {
		role, ok := ParseRole(valid)
		require.True(t, ok)
		require.Equal(t, Role(valid), role)
	}
	_, ok := ParseRole("superuser")
	require.False(t, ok)
	_, ok = ParseRole("")
	require.False(t, ok)
}

func TestParseCapability(t *testing.T) {
	for _, c := range AllCapabilities() {
		parsed, ok := ParseCapability(string(c))
		require.True(t, ok)
		require.Equal(t, c, parsed)
	}
	_, ok := ParseCapability("leads.delete_all")
	require.False(t, ok)
}

func TestCapabilitySetListSorted(t *testing.T) {
	set := NewCapabilitySet(RoleSales, CapLeadsImport)
	list := set.List()
	require.NotEmpty(t, list)
	for i := 1; i < len(list); i++ {
		require.LessOrEqual(t, string(list[i-1]), string(list[i]))
	}
}
