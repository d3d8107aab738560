package domain

import "errors"

var (
	ErrNetwork           = errors.New("network error")
	ErrTimeout           = errors.New("request timed out")
	ErrEmptyResult       = errors.New("empty result")
	ErrCacheMiss         = errors.New("cache miss")
	ErrAuth              = errors.New("authentication failed")
	ErrInvalidPlace      = errors.New("invalid place")
	ErrInvalidID         = errors.New("invalid id")
	ErrUnknownViewKind   = errors.New("unknown view kind")
	ErrPlaceNotFound     = errors.New("place not found")
	ErrPlaceExists       = errors.New("place already exists")
	ErrNoPlaces          = errors.New("no places available")
	ErrSearchUnavailable = errors.New("address search unavailable")
	ErrNoRecord          = errors.New("no such record in the active tab")
)
