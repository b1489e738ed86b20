package shared

import "strings"

// Role enumerates the account roles known to the application.
type Role string

const (
	// RoleAdmin can manage products, remove records and view every report.
	RoleAdmin Role = "admin"
	// RoleShopkeeper runs the counter: records sales and maintains stock.
	RoleShopkeeper Role = "shopkeeper"
)

// ParseRole normalises a stored role value. Unknown values are returned
// as-is with ok=false so callers can decide how strict to be.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleShopkeeper:
		return RoleShopkeeper, true
	}
	return Role(raw), false
}

// IsAdmin reports whether the role carries administrative rights.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleShopkeeper
}
