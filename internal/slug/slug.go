// Package slug derives URL paths for content nodes and taxonomy groups.
package slug

import (
	"path"
	"strconv"
	"strings"
)

// FilePath converts a content-root relative file path into its page path:
// the extension is dropped, "index" collapses into its directory, and the
// result is wrapped in leading and trailing slashes.
//
//	tutorials/go-maps.md        -> /tutorials/go-maps/
//	tutorials/go-maps/index.md  -> /tutorials/go-maps/
func FilePath(rel string) string {
	p := strings.ReplaceAll(rel, "\\", "/")
	p = strings.TrimSuffix(p, path.Ext(p))
	if path.Base(p) == "index" {
		p = path.Dir(p)
	}
	p = strings.Trim(path.Clean("/"+p), "/")
	if p == "" || p == "." {
		return "/"
	}
	return "/" + p + "/"
}

// Derive returns the slug for a content file: the first strip characters of
// its FilePath are removed and the remainder is rooted at a single "/".
// When the cut falls on a segment boundary the slug is a suffix of FilePath,
// and a strict one for strip >= 2; strip 1 keeps the whole path.
func Derive(rel string, strip int) string {
	fp := FilePath(rel)
	if strip < 0 {
		strip = 0
	}
	if strip >= len(fp) {
		return "/"
	}
	return "/" + strings.TrimLeft(fp[strip:], "/")
}

// Tag slugifies a tag value: lower-cased, spaces and slashes become hyphens.
func Tag(value string) string {
	s := strings.ToLower(value)
	s = strings.ReplaceAll(s, " ", "-")
	return strings.ReplaceAll(s, "/", "-")
}

// Topic slugifies a category value.
func Topic(value string) string {
	return strings.ToLower(value)
}

// TagPath is the page path of a tag group.
func TagPath(tag string) string {
	return "/tag/" + Tag(tag)
}

// TopicPath is the page path of a category group.
func TopicPath(category string) string {
	return "/" + Topic(category)
}

// PostPath is the page path of a content node. Videos live under /video.
func PostPath(nodeSlug string, video bool) string {
	if video {
		return "/video" + nodeSlug
	}
	return nodeSlug
}

// ListingPath returns the path of page n of a paginated listing rooted at base.
// Page 1 is the bare base path.
func ListingPath(base string, page int) string {
	if page <= 1 {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strconv.Itoa(page)
}
