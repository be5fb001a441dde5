package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateFeed is returned when a user subscribes to a URL they already
// subscribed to.
var ErrDuplicateFeed = errors.New("feed already subscribed")
