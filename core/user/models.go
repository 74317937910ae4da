package user

import (
	"github.com/Joud158/PolyLab/core"
)

// Role is the closed set of PolyLab roles. The zero value is RoleUnknown,
// which never authorizes anything.
type Role string

const (
	RoleUnknown    Role = ""
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

var AllRoles = []Role{RoleStudent, RoleInstructor, RoleAdmin}

// ParseRole maps an API role string onto the closed Role set.
func ParseRole(s string) Role {
	switch Role(core.CleanString(s, true /* lower */)) {
	case RoleStudent:
		return RoleStudent
	case RoleInstructor:
		return RoleInstructor
	case RoleAdmin:
		return RoleAdmin
	}
	return RoleUnknown
}

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleInstructor || r == RoleAdmin
}

// HomePath is where a role lands when it is denied a route: each role has
// its own dashboard, anything unrecognized goes to the landing page.
func (r Role) HomePath() string {
	switch r {
	case RoleStudent:
		return "/student"
	case RoleInstructor:
		return "/instructor"
	case RoleAdmin:
		return "/admin"
	}
	return "/"
}

func (r Role) In(roles []Role) bool {
	for _, role := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Identity is the authenticated user as reported by GET /me.
type Identity struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (i Identity) IsStudent() bool    { return i.Role == RoleStudent }
func (i Identity) IsInstructor() bool { return i.Role == RoleInstructor }
func (i Identity) IsAdmin() bool      { return i.Role == RoleAdmin }

// Signup contains information needed to register a new account.
type Signup struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (f *Signup) Validate() error {
	f.Email = core.CleanString(f.Email, true /* lower */)
	return core.Validate.Struct(f)
}

// Login carries the credentials for POST /auth/login. OTP is only set when
// the account has TOTP enrolled.
type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	OTP      string `json:"otp,omitempty" validate:"omitempty,len=6,numeric"`
}

func (f *Login) Validate() error {
	f.Email = core.CleanString(f.Email, true /* lower */)
	return core.Validate.Struct(f)
}

// ResetPassword confirms a password reset with the emailed token.
type ResetPassword struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (f *ResetPassword) Validate() error {
	f.Token = core.CleanString(f.Token)
	return core.Validate.Struct(f)
}
