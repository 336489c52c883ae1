// Package rbac defines the fixed three-tier role hierarchy and the predicate
// used by the authorization guard. Role checks compare ranks only; the
// permission list attached to a role is informational.
package rbac

// RoleType names a tier in the role hierarchy.
type RoleType string

const (
	RoleOwner  RoleType = "owner"
	RoleAdmin  RoleType = "admin"
	RoleViewer RoleType = "viewer"
)

// roleRanks orders the tiers. A higher rank satisfies any requirement at or
// below it.
var roleRanks = map[RoleType]int{
	RoleOwner:  3,
	RoleAdmin:  2,
	RoleViewer: 1,
}

// ValidRoles lists all role names accepted by the system.
var ValidRoles = []RoleType{RoleOwner, RoleAdmin, RoleViewer}

// IsValid reports whether name is a known role.
func IsValid(name RoleType) bool {
	_, ok := roleRanks[name]
	return ok
}

// Rank returns the precedence of a role. Unknown roles rank 0 and therefore
// never satisfy any requirement.
func Rank(role RoleType) int {
	return roleRanks[role]
}

// Satisfies reports whether actual meets at least one of the required roles.
// The check is an OR across required: listing several roles loosens the
// requirement to the lowest-ranked of them. Callers that want a single
// minimum tier pass exactly one role. An empty required set is not a
// wildcard here; route-level "no restriction" is handled before this call.
func Satisfies(actual RoleType, required []RoleType) bool {
	actualRank := Rank(actual)
	if actualRank == 0 {
		return false
	}
	for _, r := range required {
		if actualRank >= Rank(r) && Rank(r) > 0 {
			return true
		}
	}
	return false
}
