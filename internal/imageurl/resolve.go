// Package imageurl turns a stored product image_url into something a page can
// put in an <img src>. Every renderer and the image cleanup path go through it.
package imageurl

import (
	"regexp"
	"strings"
)

const DefaultPrefix = "/uploads/"

var externalRe = regexp.MustCompile(`(?i)^(https?:)?//`)

type Resolver struct {
	prefix string
}

// New normalizes prefix to have exactly one leading and one trailing slash.
func New(prefix string) Resolver {
	p := strings.Trim(prefix, "/")
	if p == "" {
		return Resolver{prefix: "/"}
	}
	return Resolver{prefix: "/" + p + "/"}
}

func (r Resolver) Prefix() string {
	if r.prefix == "" {
		return DefaultPrefix
	}
	return r.prefix
}

func IsExternal(raw string) bool {
	return externalRe.MatchString(raw) || strings.HasPrefix(raw, "data:")
}

// Resolve reports false when there is no image and a placeholder should be shown.
func (r Resolver) Resolve(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if IsExternal(raw) {
		return raw, true
	}
	if strings.HasPrefix(raw, r.Prefix()) {
		return raw, true
	}
	return r.Prefix() + raw, true
}

// LocalName returns the file name inside the uploads directory that raw points
// at. Empty, external and data URLs report false, as do paths rooted outside
// the prefix and nested paths, since uploads are stored flat.
func (r Resolver) LocalName(raw string) (string, bool) {
	if raw == "" || IsExternal(raw) {
		return "", false
	}
	name := raw
	if strings.HasPrefix(raw, r.Prefix()) {
		name = strings.TrimPrefix(raw, r.Prefix())
	} else if strings.HasPrefix(raw, "/") {
		return "", false
	}
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	return name, true
}

// Path builds the stored image_url for a file saved in the uploads directory.
func (r Resolver) Path(name string) string {
	return r.Prefix() + name
}
