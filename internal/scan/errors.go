package scan

import (
	"errors"
	"fmt"
)

var (
	// ErrEnumeration matches every EnumerationError.
	ErrEnumeration = errors.New("volume enumeration failed")
	// ErrNoDescriptor is returned by Build for an absent descriptor.
	ErrNoDescriptor = errors.New("volume descriptor is absent")
)

// EnumerationError aborts a scan; nothing has been written when it is returned.
type EnumerationError struct {
	Err error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("%v: %v", ErrEnumeration, e.Err)
}

func (e *EnumerationError) Unwrap() []error {
	return []error{ErrEnumeration, e.Err}
}

// ResourceValueError means the metadata of a single volume was unreadable.
// The volume is skipped and the scan continues.
type ResourceValueError struct {
	MountPoint string
	Err        error
}

func (e *ResourceValueError) Error() string {
	return fmt.Sprintf("failed to read volume '%s': %v", e.MountPoint, e.Err)
}

func (e *ResourceValueError) Unwrap() error {
	return e.Err
}

// PersistenceError means the repository rejected a single disk. Disks
// committed before or after it are unaffected.
type PersistenceError struct {
	URL string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist disk '%s': %v", e.URL, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
