package auth

import (
	"net/http"
	"strings"
)

// Rule grants access to a method/path combination. An empty role list with
// Public unset means any authenticated principal qualifies.
type Rule struct {
	Method  string // "*" matches every method
	Pattern string // exact path, or a "/**" suffix covering a subtree
	Roles   []Role
	Public  bool
}

// Decision is the outcome of evaluating the policy for one request.
type Decision struct {
	Public bool
	Roles  []Role // empty means any authenticated principal
}

// Policy is an ordered rule table evaluated first-match-wins.
type Policy struct {
	rules []Rule
}

// NewPolicy builds a policy from rules evaluated in the given order.
func NewPolicy(rules ...Rule) Policy {
	return Policy{rules: rules}
}

// DefaultPolicy is the application's authorization table: health is public,
// catalog reads accept any account, mutations need ADMIN, and every other
// path requires authentication.
func DefaultPolicy() Policy {
	return NewPolicy(
		Rule{Method: "*", Pattern: "/healthz", Public: true},
		Rule{Method: http.MethodGet, Pattern: "/tours/**", Roles: []Role{RoleUser, RoleAdmin}},
		Rule{Method: http.MethodPost, Pattern: "/tours/**", Roles: []Role{RoleAdmin}},
		Rule{Method: http.MethodPut, Pattern: "/tours/**", Roles: []Role{RoleAdmin}},
		Rule{Method: http.MethodPatch, Pattern: "/tours/**", Roles: []Role{RoleAdmin}},
		Rule{Method: http.MethodDelete, Pattern: "/tours/**", Roles: []Role{RoleAdmin}},
	)
}

// Decide resolves the access requirements for a method/path pair. It is a
// pure function of its inputs and the rule table.
func (p Policy) Decide(method, path string) Decision {
	for _, rule := range p.rules {
		if rule.Method != "*" && rule.Method != method {
			continue
		}
		if !matchPattern(rule.Pattern, path) {
			continue
		}
		return Decision{Public: rule.Public, Roles: rule.Roles}
	}
	// No rule matched: authenticated, any role.
	return Decision{}
}

// Allows reports whether a principal holding the given role satisfies the
// decision.
func (d Decision) Allows(role Role) bool {
	if d.Public || len(d.Roles) == 0 {
		return true
	}
	for _, allowed := range d.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// matchPattern supports exact paths and "/**" subtree suffixes. The subtree
// pattern also matches its own root, so "/tours/**" covers "/tours".
func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return pattern == path
}
