package domain

import "errors"

var (
	ErrSearchNotFound         = errors.New("search not found")
	ErrNoReferenceRestaurants = errors.New("no reference restaurants for search")
	ErrNoCityRestaurants      = errors.New("no city restaurants for search")
	ErrEncoderUnavailable     = errors.New("text encoder unavailable")
)
