// Package mountfs multiplexes several file systems behind a
// single one, the way mount points do in a POSIX namespace,
// entirely in user space.
//
// A Router is created over a default file system and other
// file systems are mounted into it at absolute paths. Every
// operation picks the file system by matching its path
// against the mount table, rewrites the path to be relative
// to the root of that file system, and forwards the call.
// The longest matching mount path wins, so "/a/b" takes
// precedence over "/a" regardless of the mount order.
//
// Listing a directory adds the mount points directly below
// it, so that they can be found by walking the tree even if
// the underlying directory has no such entry. A directory
// that only exists because something is mounted below it
// can be listed and stat'ed as well.
//
// Open issues virtual descriptors, which can be handed to
// Read, Write, Fstat, Close and so on no matter which file
// system produced the underlying file. Link, Rename and
// Symlink refuse to operate across two mounted file systems
// and fail with ErrCrossMount.
//
// A mounted file system that resolves a symbolic link out of
// its own tree reports a *gofs.OutsideTreeError. The router
// then resolves the target against the mount path and
// replays the operation, which may land in another mounted
// file system or in the default one. The number of such
// redirects is bounded by the MaxRedirects option.
//
// The Router is itself a gofs.FileSystem, so it can be
// mounted into another Router.
package mountfs
