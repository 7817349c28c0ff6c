package tasks

// AccessDecision is the outcome of a policy check. It carries no state and
// is recomputed per request.
type AccessDecision int

const (
	// Deny refuses access
	Deny AccessDecision = iota
	// Allow grants access
	Allow
)

// Allowed reports whether the decision grants access
func (d AccessDecision) Allowed() bool {
	return d == Allow
}

func (d AccessDecision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// AccessPolicy is the rule set mapping (role, resource-owner relationship)
// to allow/deny. Route guards call into it instead of re-deriving the
// numeric role convention at each call site.
type AccessPolicy struct{}

// NewAccessPolicy returns the policy rule set
func NewAccessPolicy() AccessPolicy {
	return AccessPolicy{}
}

// CanViewUser decides whether the requester may view another identity's
// owned resources. Only Administrator or the owner themselves are allowed.
// Manager passes the admin-area gate for user listings but is deliberately
// NOT granted blanket visibility into another user's tasks; that asymmetry
// is load-bearing and covered by tests.
func (AccessPolicy) CanViewUser(requesterRole RoleCode, requesterID, targetID string) AccessDecision {
	if requesterRole == RoleAdministrator {
		return Allow
	}
	if requesterID != "" && requesterID == targetID {
		return Allow
	}
	return Deny
}

// RequiresRoleAtMost reports whether the claim's role is at least as
// privileged as the threshold (lower numeric value = higher privilege).
func (AccessPolicy) RequiresRoleAtMost(role, threshold RoleCode) bool {
	return role.IsAtLeast(threshold)
}

// GateAdminArea protects the user-management surface: Administrator and
// Manager only. Callers failing the gate are sent to a 403 surface, not
// silently denied.
func (p AccessPolicy) GateAdminArea(role RoleCode) bool {
	return p.RequiresRoleAtMost(role, RoleManager)
}
