package models

import (
	"fmt"
	"strings"
)

// Role is the closed set of actors the storefront knows about. Incoming
// role strings are mapped through ParseRole at the boundary; anything
// unrecognized is denied.
type Role string

const (
	RoleCustomer Role = "Customer"
	RoleSeller   Role = "Seller"
	RoleManager  Role = "Manager"
	RoleDelivery Role = "Delivery"
)

// ParseRole maps a stored or transmitted role tag onto the closed enum.
// The legacy data uses uppercase tags (USER, SELLER, MANAGER, DELIVERY),
// so matching is case-insensitive and USER is an alias for Customer.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "USER", "CUSTOMER":
		return RoleCustomer, nil
	case "SELLER":
		return RoleSeller, nil
	case "MANAGER":
		return RoleManager, nil
	case "DELIVERY":
		return RoleDelivery, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
	}
}

// Can reports whether the role is one of the allowed set. Used by the
// route middleware to fail closed.
func (r Role) Can(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}
