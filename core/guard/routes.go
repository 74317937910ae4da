package guard

import (
	"github.com/Joud158/PolyLab/core/session"
	"github.com/Joud158/PolyLab/core/user"
)

// RouteTable maps route paths to the roles allowed to view them. Paths not
// registered are public.
type RouteTable struct {
	allowed map[string][]user.Role
}

func NewRouteTable() *RouteTable {
	return &RouteTable{allowed: make(map[string][]user.Role)}
}

func (rt *RouteTable) Protect(path string, roles ...user.Role) {
	rt.allowed[path] = roles
}

// Resolve returns the guard decision for a path. Public (unregistered)
// paths always render.
func (rt *RouteTable) Resolve(path string, sess session.Session) Decision {
	roles, ok := rt.allowed[path]
	if !ok {
		return Decision{Action: Allow}
	}
	return Authorize(sess, roles...)
}

// DefaultRoutes is the application route table: every dashboard is role
// gated, instructor pages admit admins, and the admin board is admin only.
func DefaultRoutes() *RouteTable {
	rt := NewRouteTable()
	rt.Protect("/student", user.RoleStudent, user.RoleInstructor, user.RoleAdmin)
	rt.Protect("/student/classrooms/:id", user.RoleStudent, user.RoleInstructor, user.RoleAdmin)
	rt.Protect("/instructor/request", user.RoleStudent, user.RoleInstructor, user.RoleAdmin)
	rt.Protect("/instructor", user.RoleInstructor, user.RoleAdmin)
	rt.Protect("/instructor/classrooms", user.RoleInstructor, user.RoleAdmin)
	rt.Protect("/instructor/classrooms/:id", user.RoleInstructor, user.RoleAdmin)
	rt.Protect("/admin", user.RoleAdmin)
	return rt
}
