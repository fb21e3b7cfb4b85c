package ffalloc

import "github.com/pkg/errors"

// Expected outcomes of Allocate and Free. They are returned wrapped with
// the id and size involved; compare with errors.Is.
var (
	ErrInsufficientSpace = errors.New("insufficient space")
	ErrUnknownID         = errors.New("unknown id")
	ErrDuplicateID       = errors.New("id already allocated")
	ErrInvalidSize       = errors.New("invalid size")
)
