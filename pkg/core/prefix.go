package core

import "strings"

// Prefix namespaces tag names for a nested render pass, e.g. "parents"
// scopes {parents:title}. A trailing colon is optional.
type Prefix string

// Namespace returns the prefix with its trailing colon, or "" when unset.
func (p Prefix) Namespace() string {
	s := strings.TrimSuffix(string(p), ":")
	if s == "" {
		return ""
	}
	return s + ":"
}

// Key namespaces name under the prefix.
func (p Prefix) Key(name string) string {
	return p.Namespace() + name
}

// Strip removes the prefix from name. It reports false when name lies
// outside the namespace.
func (p Prefix) Strip(name string) (string, bool) {
	ns := p.Namespace()
	if ns == "" {
		return name, true
	}
	if !strings.HasPrefix(name, ns) {
		return "", false
	}
	return name[len(ns):], true
}

// Child returns the prefix for a nested pass under the given tag name.
func (p Prefix) Child(name string) Prefix {
	return Prefix(p.Namespace() + name)
}
