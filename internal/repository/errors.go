package repository

import "errors"

var (
	// ErrInvalidImageURL indicates an invalid image URL
	ErrInvalidImageURL = errors.New("invalid image URL")

	// ErrSourceUnavailable indicates no storage backend serves the URL
	ErrSourceUnavailable = errors.New("image source unavailable")
)
