package storage

import "github.com/pkg/errors"

// Sentinels shared by every store implementation. Callers match them with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("duplicate key")
	ErrReferenced = errors.New("foreign key violation")
)
