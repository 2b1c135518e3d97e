package rbac

import (
	"strings"

	"fleetcheck/infrastructure/cache"
	"fleetcheck/models"
)

const (
	RoleAdmin    = "admin"
	RoleWorkshop = "workshop"
	RoleOperator = "operator"
)

// Rbac registers route resources per role in the roles cache.
type Rbac struct {
	cache *cache.RbacRolesCache
}

func New(c *cache.RbacRolesCache) *Rbac {
	return &Rbac{cache: c}
}

func (r *Rbac) Add(role, code, method, path string) {
	if r == nil || r.cache == nil {
		return
	}
	r.cache.Add(role, cache.Resource{
		Role:             role,
		UserResourceCode: code,
		Method:           strings.ToUpper(method),
		Path:             path,
	})
}

// AddAll registers one resource for several roles.
func (r *Rbac) AddAll(roles []string, code, method, path string) {
	for _, role := range roles {
		r.Add(role, code, method, path)
	}
}

// RoleForEmployee maps the directory control flags to a role.
func RoleForEmployee(e models.Employee) string {
	switch {
	case e.IsAdmin():
		return RoleAdmin
	case e.IsWorkshop():
		return RoleWorkshop
	default:
		return RoleOperator
	}
}

// LandingPath is where a role lands after login.
func LandingPath(role string) string {
	if role == RoleOperator {
		return "/tasker/checklists/new"
	}
	return "/tasker/dashboard"
}

func ValidateResourceAccess(resources []cache.Resource, urlPath, method string) bool {
	method = strings.ToUpper(method)
	for _, res := range resources {
		if res.Method != method {
			continue
		}
		if matchPath(res.Path, urlPath) {
			return true
		}
	}
	return false
}

func matchPath(pattern, path string) bool {
	if pattern == path {
		return true
	}

	pattern = strings.Trim(pattern, "/")
	path = strings.Trim(path, "/")

	patternSeg := strings.Split(pattern, "/")
	pathSeg := strings.Split(path, "/")

	// /a/*/c and /a/*/*/d
	if len(patternSeg) == len(pathSeg) {
		for i := range patternSeg {
			if patternSeg[i] == "*" {
				continue
			}
			if patternSeg[i] != pathSeg[i] {
				return false
			}
		}
		return true
	}

	// /a/b/* matches any deeper suffix.
	if len(patternSeg) > 0 && patternSeg[len(patternSeg)-1] == "*" {
		prefix := "/" + strings.Join(patternSeg[:len(patternSeg)-1], "/")
		return strings.HasPrefix("/"+path, prefix+"/") || "/"+path == prefix
	}

	return false
}
