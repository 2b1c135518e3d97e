package cache

import "sync"

// Resource ties a screen code to the route and method a role may call.
type Resource struct {
	UserResourceCode string
	Path             string
	Method           string
	Role             string
}

type resourceKey struct {
	code, method, path string
}

// RbacRolesCache holds the route grants registered at startup. Grants are
// stored once per role even when several routes share a screen code.
type RbacRolesCache struct {
	mu     sync.RWMutex
	byRole map[string][]Resource
	seen   map[string]map[resourceKey]struct{}
	codes  map[string]struct{}
}

func NewRbacRolesCache() *RbacRolesCache {
	return &RbacRolesCache{
		byRole: make(map[string][]Resource),
		seen:   make(map[string]map[resourceKey]struct{}),
		codes:  make(map[string]struct{}),
	}
}

// Add grants r to role. Re-adding an identical grant is a no-op.
func (c *RbacRolesCache) Add(role string, r Resource) {
	key := resourceKey{code: r.UserResourceCode, method: r.Method, path: r.Path}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen[role] == nil {
		c.seen[role] = make(map[resourceKey]struct{})
	}
	if _, dup := c.seen[role][key]; dup {
		return
	}
	c.seen[role][key] = struct{}{}
	c.byRole[role] = append(c.byRole[role], r)
	c.codes[r.UserResourceCode] = struct{}{}
}

// GetRolesAndResources returns the union of grants for roles.
func (c *RbacRolesCache) GetRolesAndResources(roles []string) []Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Resource
	for _, role := range roles {
		out = append(out, c.byRole[role]...)
	}
	return out
}

// CodesForRoles returns the screen codes reachable by any of roles, in the
// shape the navigation menu reads.
func (c *RbacRolesCache) CodesForRoles(roles []string) map[string]int {
	out := make(map[string]int)
	for _, res := range c.GetRolesAndResources(roles) {
		out[res.UserResourceCode] = 1
	}
	return out
}

// AllCodes returns every registered screen code; admins see all of them.
func (c *RbacRolesCache) AllCodes() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]int, len(c.codes))
	for code := range c.codes {
		out[code] = 1
	}
	return out
}
