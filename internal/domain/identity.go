package domain

type Role string

const (
	RoleCustomer  Role = "Customer"
	RoleAdminIT   Role = "AdminIT"
	RoleFoodAdmin Role = "FoodAdmin"
	RoleStaff     Role = "Staff"
)

// Identity is the caller as reported by the upstream auth layer. UserID is empty for guests.
type Identity struct {
	UserID string
	Roles  []Role
}

func (i Identity) IsAuthenticated() bool {
	return i.UserID != ""
}

func (i Identity) HasAnyRole(roles ...Role) bool {
	for _, have := range i.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// IsStaff covers every role allowed to work orders.
func (i Identity) IsStaff() bool {
	return i.HasAnyRole(RoleAdminIT, RoleFoodAdmin, RoleStaff)
}

// IsCatalogAdmin covers roles allowed to edit products, categories and discounts.
func (i Identity) IsCatalogAdmin() bool {
	return i.HasAnyRole(RoleAdminIT, RoleFoodAdmin)
}
