package repository

import "errors"

// ErrNotFound is returned when a requested record is not found in the repository.
// This abstracts away the underlying storage implementation from the service layer.
var ErrNotFound = errors.New("record not found")

// ErrAttemptConflict is returned by RecordPlay when the user's plays for the
// day no longer match the attempt being recorded, typically because another
// request for the same user committed first.
var ErrAttemptConflict = errors.New("attempt already recorded")

// ErrQuantityBelowClaimed is returned when a prize update would lower its
// quantity under the number of units already handed out.
var ErrQuantityBelowClaimed = errors.New("quantity is lower than claimed count")
