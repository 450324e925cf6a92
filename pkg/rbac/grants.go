package rbac

import (
	"strings"

	"keubot/models"
)

// Grants is the set of active roles held by one user, most recent first.
// Access is the union of all roles; the admin role allows everything.
type Grants []models.Role

func (g Grants) allows(value string, list func(models.Role) []string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, r := range g {
		if r.Name == RoleAdmin {
			return true
		}
		for _, v := range list(r) {
			if v == models.Wildcard || strings.ToLower(v) == value {
				return true
			}
		}
	}
	return false
}

// Feature reports whether any role grants feature.
func (g Grants) Feature(feature string) bool {
	return g.allows(feature, func(r models.Role) []string { return r.Features })
}

// Command reports whether any role grants cmd, e.g. "/saldo".
func (g Grants) Command(cmd string) bool {
	return g.allows(cmd, func(r models.Role) []string { return r.Commands })
}

// Shortcut reports whether any role grants the single-letter shortcut.
func (g Grants) Shortcut(s string) bool {
	return g.allows(s, func(r models.Role) []string { return r.Shortcuts })
}

// QuickNumber reports whether any role grants the digit.
func (g Grants) QuickNumber(n string) bool {
	return g.allows(n, func(r models.Role) []string { return r.QuickNumbers })
}

// Primary is the most recently assigned role.
func (g Grants) Primary() (models.Role, bool) {
	if len(g) == 0 {
		return models.Role{}, false
	}
	return g[0], true
}

// Has reports whether the user holds the named role.
func (g Grants) Has(name string) bool {
	for _, r := range g {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Labels renders the roles as "emoji Name" strings.
func (g Grants) Labels() []string {
	out := make([]string, 0, len(g))
	for _, r := range g {
		out = append(out, r.Label())
	}
	return out
}
