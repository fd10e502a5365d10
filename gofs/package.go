// Package gofs defines the contract between a mount router
// and the file systems mounted into it.
//
// Every backend supports the core FileSystem interface, that
// is, OpenFile, Mkdir, Stat, Rename and Remove. The returned
// File should support read, write (sequential or random),
// close, seek, sync, readdir, truncate and stat operations.
// An *os.File satisfies File as it is.
//
// Anything beyond the core is an optional capability, which
// the backend advertises by implementing one of the small
// interfaces in this package, such as ReadDirFS or LinkFS.
// The caller finds out with a type assertion instead of
// inspecting the backend at runtime. When a capability is
// missing, the helpers ReadDir, ReadFile and WriteFile fall
// back onto the core interface.
//
// Names passed to a backend are always slash separated and
// rooted at "/", which stands for the root of that backend,
// no matter where it has been mounted.
//
// A backend that follows a symbolic link out of its own tree
// reports it with an *OutsideTreeError, so that the caller
// can retry the operation in the enclosing namespace.
package gofs
