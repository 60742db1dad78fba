package repository

import "errors"

// ErrNotFound is returned when a requested record is not found in the repository.
// This abstracts away the underlying storage implementation from the service layer.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateBallot is returned when a ballot insert hits the
// (poll_id, voter_id) uniqueness constraint. The constraint, not an
// application-level read, is what enforces one ballot per voter per poll.
var ErrDuplicateBallot = errors.New("ballot already recorded for this voter")
