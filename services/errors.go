package services

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrBusy        = errors.New("another operation is in progress for this draft")
	ErrUnavailable = errors.New("report storage unavailable")
)
