// Package siteurl is the default path resolver: it turns template paths
// such as "blog/view/my-post" into absolute site URLs.
package siteurl

import (
	"net/url"
	"strings"
)

// SiteIndex is the reserved path that resolves to the site root.
const SiteIndex = "site_index"

// Resolver joins paths onto a site URL and an optional index page.
type Resolver struct {
	SiteURL   string
	IndexPage string
}

// New returns a resolver for siteURL. indexPage (e.g. "index.php") is
// inserted between the site URL and path variables when set.
func New(siteURL, indexPage string) Resolver {
	return Resolver{SiteURL: siteURL, IndexPage: indexPage}
}

// Resolve implements core.PathResolver.
//
// Absolute URLs pass through unchanged. Path variables are joined onto the
// site URL and index page; plain paths onto the site URL only.
func (r Resolver) Resolve(path string, isPathVariable bool) string {
	path = strings.TrimSpace(path)
	if isAbsolute(path) {
		return path
	}

	base := strings.TrimRight(r.SiteURL, "/")
	if path == SiteIndex {
		return base + "/"
	}

	parts := []string{base}
	if isPathVariable && r.IndexPage != "" {
		parts = append(parts, strings.Trim(r.IndexPage, "/"))
	}
	p := strings.Trim(path, "/")
	if p != "" {
		parts = append(parts, p)
	}
	out := strings.Join(parts, "/")
	if isPathVariable && !isFile(p) {
		out += "/"
	}
	return out
}

// isFile reports whether the last segment of p names a file or carries a
// query, in which case no trailing slash is added.
func isFile(p string) bool {
	if strings.ContainsAny(p, "?#") {
		return true
	}
	last := p[strings.LastIndex(p, "/")+1:]
	return strings.Contains(last, ".")
}

func isAbsolute(path string) bool {
	if strings.HasPrefix(path, "//") {
		return true
	}
	u, err := url.Parse(path)
	return err == nil && u.Scheme != "" && u.Host != ""
}
