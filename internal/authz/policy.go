// Package authz centralizes role and capability policy evaluation.
// Both the API middleware and the SPA (via /api/auth/me) consume the
// same definitions; the API check is the security boundary, the UI
// check only hides controls.
package authz

import "sort"

// Role is a closed enumeration of account roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleSales   Role = "sales"
)

// ParseRole maps a stored role string onto the closed enumeration.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleSales:
		return Role(s), true
	}
	return "", false
}

// Capability is an independently grantable authorization flag.
type Capability string

const (
	CapLeadsView       Capability = "leads.view"
	CapLeadsEdit       Capability = "leads.edit"
	CapLeadsImport     Capability = "leads.import"
	CapCustomersView   Capability = "customers.view"
	CapCustomersEdit   Capability = "customers.edit"
	CapCustomersImport Capability = "customers.import"
	CapCommsView       Capability = "comms.view"
	CapCommsLog        Capability = "comms.log"
	CapDashboardView   Capability = "dashboard.view"
	CapUsersView       Capability = "users.view"
	CapUsersEdit       Capability = "users.edit"
	CapClearSystemData Capability = "system.clear_data"
)

// AllCapabilities lists every known capability.
func AllCapabilities() []Capability {
	return []Capability{
		CapLeadsView, CapLeadsEdit, CapLeadsImport,
		CapCustomersView, CapCustomersEdit, CapCustomersImport,
		CapCommsView, CapCommsLog,
		CapDashboardView,
		CapUsersView, CapUsersEdit,
		CapClearSystemData,
	}
}

// ParseCapability maps a stored capability string onto the closed enumeration.
func ParseCapability(s string) (Capability, bool) {
	for _, c := range AllCapabilities() {
		if Capability(s) == c {
			return c, true
		}
	}
	return "", false
}

// roleGrants is the static role to capability map. Per-user extra grants
// are unioned on top when the identity is resolved.
var roleGrants = map[Role][]Capability{
	RoleAdmin: AllCapabilities(),
	RoleManager: {
		CapLeadsView, CapLeadsEdit, CapLeadsImport,
		CapCustomersView, CapCustomersEdit, CapCustomersImport,
		CapCommsView, CapCommsLog,
		CapDashboardView,
		CapUsersView,
	},
	RoleSales: {
		CapLeadsView, CapLeadsEdit,
		CapCustomersView, CapCustomersEdit,
		CapCommsView, CapCommsLog,
		CapDashboardView,
	},
}

// Grants returns the capabilities granted by a role.
func Grants(role Role) []Capability {
	caps := roleGrants[role]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// CapabilitySet is a set of capabilities.
type CapabilitySet map[Capability]struct{}

// NewCapabilitySet builds a set from role grants plus extra grants.
func NewCapabilitySet(role Role, extra ...Capability) CapabilitySet {
	set := make(CapabilitySet)
	for _, c := range roleGrants[role] {
		set[c] = struct{}{}
	}
	for _, c := range extra {
		set[c] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the capability.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// List returns the capabilities in stable order.
func (s CapabilitySet) List() []Capability {
	out := make([]Capability, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Identity is the authenticated user's role and permission set as
// resolved for the current request. It is rebuilt from the user record
// on every session restore, never persisted.
type Identity struct {
	UserID       int64
	Email        string
	Name         string
	Role         Role
	Capabilities CapabilitySet
}

// Policy describes the requirements a route or action places on an identity.
// Zero-value fields impose no requirement.
type Policy struct {
	Roles      []Role
	Capability Capability
}

// Decision is the outcome of policy evaluation.
type Decision int

const (
	Denied Decision = iota
	Allowed
)

// Decide evaluates a policy against an identity. Pure function: no side
// effects, identical inputs yield identical decisions. A nil identity is
// always denied. Role membership is checked before the capability.
func Decide(id *Identity, pol Policy) Decision {
	if id == nil {
		return Denied
	}
	if len(pol.Roles) > 0 {
		member := false
		for _, r := range pol.Roles {
			if id.Role == r {
				member = true
				break
			}
		}
		if !member {
			return Denied
		}
	}
	if pol.Capability != "" && !id.Capabilities.Has(pol.Capability) {
		return Denied
	}
	return Allowed
}
