package gofs

import (
	"path"
	"strings"
)

// ResolveLink computes the name a symbolic link points at.
//
// The linkDir is the directory holding the link, relative to
// the root of the tree ("" for the root itself), the target
// is the content of the link and rest is the remainder of
// the name being resolved past the link. An absolute target
// is taken relative to the root of the tree.
//
// The result is relative to the root of the tree, "" meaning
// the root. When it climbs above the root, an
// *OutsideTreeError is returned instead.
func ResolveLink(linkDir, target string, rest ...string) (string, error) {
	var joined string
	if path.IsAbs(target) {
		joined = strings.TrimPrefix(path.Clean(target), "/")
	} else {
		joined = path.Join(linkDir, target)
	}
	joined = path.Join(append([]string{joined}, rest...)...)
	if joined == ".." || strings.HasPrefix(joined, "../") {
		return "", &OutsideTreeError{RelativeTargetPath: joined}
	}
	if joined == "." {
		joined = ""
	}
	return joined, nil
}
