package gofs

import (
	"fmt"

	"github.com/pkg/errors"
)

// OutsideTreeName is the discriminator carried by an
// *OutsideTreeError.
const OutsideTreeName = "OUTSIDETREE"

// OutsideTreeError is returned by a file system when the
// requested entry is an indirection, such as a symbolic
// link, whose target lies outside the file system's own
// tree.
//
// RelativeTargetPath is the target relative to the root of
// the file system that returned the error, for example
// "../other.txt". It is meant to be resolved against the
// path the file system is mounted at.
type OutsideTreeError struct {
	RelativeTargetPath string
}

func (e *OutsideTreeError) Name() string { return OutsideTreeName }

func (e *OutsideTreeError) Error() string {
	return fmt.Sprintf("%s: target %q is outside of the tree",
		OutsideTreeName, e.RelativeTargetPath)
}

// IsOutsideTree reports whether err carries an escape
// signal, returning its relative target path.
func IsOutsideTree(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var escape *OutsideTreeError
	if !errors.As(err, &escape) {
		return "", false
	}
	return escape.RelativeTargetPath, true
}
