package auth

type Role string

const (
	RoleOwner   Role = "owner"
	RoleVet     Role = "vet"
	RolePetshop Role = "petshop"
	RoleAdmin   Role = "admin"
)

// IsVendor: veterinario y petshop necesitan perfil de negocio completo.
func (r Role) IsVendor() bool {
	return r == RoleVet || r == RolePetshop
}

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleVet, RolePetshop, RoleAdmin:
		return true
	default:
		return false
	}
}

// Claims representa al usuario autenticado del request.
type Claims struct {
	UserID string
	Email  string
	Role   Role
}

func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
