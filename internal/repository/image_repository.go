package repository

import (
	"context"
	"fmt"

	"go-ecg-digitizer/internal/storage"
	"go-ecg-digitizer/pkg/validation"
)

// SourceRepository routes Azure blob URLs to blob storage and everything
// else to the HTTP fetcher
type SourceRepository struct {
	fetcher   storage.ImageFetcher
	blobs     storage.BlobStorage
	validator *validation.URLValidator
}

// NewSourceRepository creates a repository. blobs may be nil, in which case
// blob URLs are fetched anonymously over HTTPS.
func NewSourceRepository(fetcher storage.ImageFetcher, blobs storage.BlobStorage, validator *validation.URLValidator) ImageRepository {
	if validator == nil {
		validator = validation.NewURLValidator()
	}
	return &SourceRepository{
		fetcher:   fetcher,
		blobs:     blobs,
		validator: validator,
	}
}

// FetchImage retrieves the raw image bytes behind a URL
func (r *SourceRepository) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	switch r.SourceOf(imageURL) {
	case SourceBlob:
		return r.blobs.GetImage(ctx, imageURL)
	default:
		if r.fetcher == nil {
			return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, imageURL)
		}
		return r.fetcher.FetchImage(ctx, imageURL)
	}
}

// ValidateImageURL validates if the provided URL is acceptable
func (r *SourceRepository) ValidateImageURL(imageURL string) error {
	if imageURL == "" {
		return ErrInvalidImageURL
	}
	return r.validator.ValidateImageURL(imageURL)
}

// SourceOf names the backend that would serve the URL
func (r *SourceRepository) SourceOf(imageURL string) Source {
	if r.blobs != nil && storage.IsBlobURL(imageURL) {
		return SourceBlob
	}
	return SourceHTTP
}
