package repository

import (
	"context"
)

// ImageRepository retrieves encoded ECG sheet images from remote sources
type ImageRepository interface {
	// FetchImage retrieves the raw image bytes behind a URL
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error

	// SourceOf names the backend that would serve the URL
	SourceOf(imageURL string) Source
}

// Source identifies a storage backend
type Source string

const (
	SourceHTTP Source = "http"
	SourceBlob Source = "azure_blob"
)
