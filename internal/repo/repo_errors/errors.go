package repo_errors

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrAlreadyExists  = errors.New("record already exists")
	ErrStatusMismatch = errors.New("record is not in the expected status")
	ErrBidNotPending  = errors.New("bid is not pending")
)
