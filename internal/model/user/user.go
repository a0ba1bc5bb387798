package user

import "fmt"

type Role string

const (
	RoleAdmin           Role = "ADMIN"
	RoleUser            Role = "USER"
	RoleSiteAcquisition Role = "SITE_ACQUISITION"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleUser, RoleSiteAcquisition:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type User struct {
	ID        uint32 `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"-"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
	Active    bool   `json:"active"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
