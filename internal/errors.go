package internal

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"syscall"
)

// ErrorKind classifies a ScanError. String-based so it reads well in logs.
type ErrorKind string

const (
	// KindMissingArgument: a required positional input is absent.
	KindMissingArgument ErrorKind = "MISSING_ARGUMENT"
	// KindInvalidType: an argument or option has the wrong type.
	KindInvalidType ErrorKind = "INVALID_TYPE"
	// KindInvalidRange: an option value is out of range or conflicts with another.
	KindInvalidRange ErrorKind = "INVALID_RANGE"
	// KindFilesystem: reading a directory failed.
	KindFilesystem ErrorKind = "FILESYSTEM_ERROR"
)

// Sentinels for errors.Is; they match any ScanError of the same kind.
var (
	ErrMissingArgument = &ScanError{Kind: KindMissingArgument}
	ErrInvalidType     = &ScanError{Kind: KindInvalidType}
	ErrInvalidRange    = &ScanError{Kind: KindInvalidRange}
	ErrFilesystem      = &ScanError{Kind: KindFilesystem}
)

// ScanError is the single error type returned by the scanner.
type ScanError struct {
	Kind    ErrorKind
	Message string

	// Required is set for KindMissingArgument.
	Required int

	// Filesystem details, set for KindFilesystem.
	Path  string
	Code  string
	Errno syscall.Errno
	Err   error
}

func (e *ScanError) Error() string { return e.Message }

func (e *ScanError) Unwrap() error { return e.Err }

// Is reports kind equality, so errors.Is(err, ErrInvalidRange) works for any message.
func (e *ScanError) Is(target error) bool {
	t, ok := target.(*ScanError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// IsKind reports whether err is a ScanError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *ScanError
	return errors.As(err, &se) && se.Kind == kind
}

// MissingArgument reports that fewer than required positional arguments were given.
func MissingArgument(required int) *ScanError {
	return &ScanError{
		Kind:     KindMissingArgument,
		Required: required,
		Message:  fmt.Sprintf("More arguments needed. Required: (%d)", required),
	}
}

// InvalidType reports an option value of the wrong type.
func InvalidType(msg string) *ScanError {
	return &ScanError{Kind: KindInvalidType, Message: msg}
}

// InvalidRange reports an option value outside its allowed range, or a
// forbidden combination of options.
func InvalidRange(msg string) *ScanError {
	return &ScanError{Kind: KindInvalidRange, Message: msg}
}

// LevelsAndRecursive is the InvalidRange returned when a depth cap and
// recursive are both requested.
func LevelsAndRecursive() *ScanError {
	return InvalidRange(msgLevelsAndRecursive)
}

// FilesystemError wraps a failed directory read, keeping the errno when
// the platform exposes one.
func FilesystemError(path string, err error) *ScanError {
	se := &ScanError{Kind: KindFilesystem, Path: path, Err: err}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		se.Errno = errno
	}
	se.Code = errorCode(err)
	se.Message = fmt.Sprintf("%s: %v", se.Code, err)
	return se
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, iofs.ErrNotExist):
		return "ENOENT"
	case errors.Is(err, iofs.ErrPermission):
		return "EACCES"
	case errors.Is(err, syscall.ENOTDIR):
		return "ENOTDIR"
	}
	return "EIO"
}
