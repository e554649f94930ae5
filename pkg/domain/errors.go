package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("indexdb: not found")
	ErrUnsupportedType  = errors.New("indexdb: unsupported value type")
	ErrCodecNotFound    = errors.New("indexdb: value codec not found")
	ErrArityMismatch    = errors.New("indexdb: query bounds do not match index arity")
	ErrIndexNotDefined  = errors.New("indexdb: index not defined")
	ErrStaleRepair      = errors.New("indexdb: stale index entry repair failed")
	ErrInvalidIndexSpec = errors.New("indexdb: invalid index definition")
	ErrClosed           = errors.New("indexdb: store closed")
)

// UnsupportedTypeError reports a value that has no defined ordering
type UnsupportedTypeError struct {
	Value  interface{}
	Reason string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%v: %T (%s)", ErrUnsupportedType, e.Value, e.Reason)
	}
	return fmt.Sprintf("%v: %T", ErrUnsupportedType, e.Value)
}

func (e *UnsupportedTypeError) Is(target error) bool { return target == ErrUnsupportedType }

// CodecNotFoundError names the key space whose parent chain carries no codec
type CodecNotFoundError struct {
	Namespace string
}

func (e *CodecNotFoundError) Error() string {
	return fmt.Sprintf("%v for namespace %q", ErrCodecNotFound, e.Namespace)
}

func (e *CodecNotFoundError) Is(target error) bool { return target == ErrCodecNotFound }

// ArityMismatchError is returned before any I/O when a bound tuple has the
// wrong number of elements
type ArityMismatchError struct {
	Index string
	Want  int
	Start int
	End   int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("%v: index %s has %d properties, got start=%d end=%d",
		ErrArityMismatch, e.Index, e.Want, e.Start, e.End)
}

func (e *ArityMismatchError) Is(target error) bool { return target == ErrArityMismatch }

// IndexNotDefinedError is returned for queries against an undeclared index
// when on-demand creation is disabled
type IndexNotDefinedError struct {
	Index string
}

func (e *IndexNotDefinedError) Error() string {
	return fmt.Sprintf("%v: %s", ErrIndexNotDefined, e.Index)
}

func (e *IndexNotDefinedError) Is(target error) bool { return target == ErrIndexNotDefined }

// StaleEntryRepairError wraps the store error raised while deleting a stale
// index entry
type StaleEntryRepairError struct {
	Index      string
	PrimaryKey string
	Err        error
}

func (e *StaleEntryRepairError) Error() string {
	return fmt.Sprintf("%v: index %s, key %q: %v", ErrStaleRepair, e.Index, e.PrimaryKey, e.Err)
}

func (e *StaleEntryRepairError) Is(target error) bool { return target == ErrStaleRepair }

func (e *StaleEntryRepairError) Unwrap() error { return e.Err }
