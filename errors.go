package datastoreflex

import (
	"errors"
	"fmt"
)

// ErrNoSuchEntity is returned when no entity exists for a requested key.
var ErrNoSuchEntity = errors.New("datastoreflex: no such entity")

// ErrNoSuchObject is returned when no bucket object exists at a
// requested path.
var ErrNoSuchObject = errors.New("datastoreflex: no such object")

// MultiError is returned by batch operations when there are errors for
// particular elements but not for the operation as a whole.
type MultiError []error

func (m MultiError) Error() string {
	s, n := "", 0
	for _, e := range m {
		if e == nil {
			continue
		}
		if n == 0 {
			s = e.Error()
		}
		n++
	}
	switch n {
	case 0:
		return "(0 errors)"
	case 1:
		return s
	case 2:
		return s + " (and 1 other error)"
	}
	return fmt.Sprintf("%s (and %d other errors)", s, n-1)
}

// ConfigError reports a malformed column configuration, or a property
// value that the configuration cannot redirect.
type ConfigError struct {
	Property string
	Reason   string
}

func (e *ConfigError) Error() string {
	if e.Property == "" {
		return "datastoreflex: invalid config: " + e.Reason
	}
	return fmt.Sprintf("datastoreflex: invalid config for property %q: %s", e.Property, e.Reason)
}

// MissingFieldError reports an entity that lacks a field required by a
// configured property's path elements.
type MissingFieldError struct {
	Property string
	Field    string
	Reason   string
}

func (e *MissingFieldError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("datastoreflex: field %q required by property %q: %s", e.Field, e.Property, e.Reason)
	}
	return fmt.Sprintf("datastoreflex: entity is missing field %q required by property %q", e.Field, e.Property)
}

// BucketError reports a failure of the bucket collaborator.
type BucketError struct {
	Op   string
	Path string
	Err  error
}

func (e *BucketError) Error() string {
	return fmt.Sprintf("datastoreflex: bucket %s %s: %s", e.Op, e.Path, e.Err.Error())
}

func (e *BucketError) Unwrap() error {
	return e.Err
}

// DatastoreError reports a failure of the datastore collaborator.
type DatastoreError struct {
	Op  string
	Err error
}

func (e *DatastoreError) Error() string {
	return fmt.Sprintf("datastoreflex: datastore %s: %s", e.Op, e.Err.Error())
}

func (e *DatastoreError) Unwrap() error {
	return e.Err
}
