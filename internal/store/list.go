package store

import (
	"context"
	"time"
)

type Object struct {
	Key          string
	LastModified time.Time
}

// Lister enumerates stored images under a prefix, newest first.
type Lister interface {
	List(context.Context, string) ([]Object, error)
}
