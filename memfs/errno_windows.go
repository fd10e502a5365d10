//go:build windows

package memfs

import "golang.org/x/sys/windows"

var (
	errNotDir   error = windows.STATUS_NOT_A_DIRECTORY
	errIsDir    error = windows.STATUS_FILE_IS_A_DIRECTORY
	errNotEmpty error = windows.STATUS_DIRECTORY_NOT_EMPTY
	errAccess   error = windows.STATUS_ACCESS_DENIED
	errLoop     error = windows.ERROR_CANT_RESOLVE_FILENAME
	errInvalid  error = windows.ERROR_INVALID_PARAMETER
	errBusy     error = windows.ERROR_BUSY
)
