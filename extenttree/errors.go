package extenttree

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an operation failed, so callers can branch on
// errors.Is(err, extenttree.Sentinel(extenttree.ErrHeaderBad)) etc.
// without parsing error strings.
type ErrorKind int

const (
	_ ErrorKind = iota
	ErrBadInodeNum
	ErrNotExtentInode
	ErrHeaderBad
	ErrNoCurrentNode
	ErrNoNext
	ErrNoPrev
	ErrNoUp
	ErrNoDown
	ErrNotFound
	ErrOpNotSupported
	ErrCantInsert
	ErrReadOnlyFS
)

var kindSentinels = map[ErrorKind]error{
	ErrBadInodeNum:     errors.New("extenttree: bad inode number"),
	ErrNotExtentInode:  errors.New("extenttree: inode does not use extents"),
	ErrHeaderBad:       errors.New("extenttree: extent header invariant violated"),
	ErrNoCurrentNode:   errors.New("extenttree: no current node"),
	ErrNoNext:          errors.New("extenttree: no next sibling"),
	ErrNoPrev:          errors.New("extenttree: no previous sibling"),
	ErrNoUp:            errors.New("extenttree: already at root"),
	ErrNoDown:          errors.New("extenttree: cannot descend"),
	ErrNotFound:        errors.New("extenttree: logical block not mapped"),
	ErrOpNotSupported:  errors.New("extenttree: operation not supported"),
	ErrCantInsert:      errors.New("extenttree: node is full"),
	ErrReadOnlyFS:      errors.New("extenttree: filesystem is read-only"),
}

// Error wraps an ErrorKind with an optional underlying cause, giving
// callers a stable sentinel to match on via errors.Is while still
// preserving whatever caused the failure.
type Error struct {
	Kind  ErrorKind
	Cause error
}

func (e *Error) Error() string {
	sentinel := kindSentinels[e.Kind]
	if e.Cause == nil {
		return sentinel.Error()
	}
	return fmt.Sprintf("%s: %v", sentinel.Error(), e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is compares by Kind, ignoring Cause, so errors.Is(err,
// extenttree.Sentinel(extenttree.ErrHeaderBad)) works regardless of what
// caused the particular ErrHeaderBad being compared against.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == te.Kind
}

func newErr(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// Internal causes wrapped by ErrHeaderBad; exported only through Error's
// %w chain, never compared directly by callers.
var (
	errShortBuffer      = errors.New("buffer shorter than header size")
	errBadMagic         = errors.New("magic does not match sentinel")
	errEntriesExceedMax = errors.New("entries exceeds max")
	errMaxOutOfWindow   = errors.New("max outside computed window")
)

// Sentinel builds an unwrapped *Error usable with errors.Is for a given
// kind, e.g. errors.Is(err, extenttree.Sentinel(extenttree.ErrNoNext)).
func Sentinel(kind ErrorKind) error {
	return &Error{Kind: kind}
}

// KindOf extracts the ErrorKind from err if it is (or wraps) an *Error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
