package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// blobHostSuffix identifies Azure blob storage endpoints
const blobHostSuffix = ".blob.core.windows.net"

type BlobStorage interface {
	GetImage(ctx context.Context, blobURL string) ([]byte, error)
}

type azureStorage struct {
	client   *azblob.Client
	maxBytes int64
}

func NewAzureStorage(accountName string, accountKey string, maxBytes int64) (BlobStorage, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("blob credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s%s", accountName, blobHostSuffix),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("blob client: %w", err)
	}

	return &azureStorage{client: client, maxBytes: maxBytes}, nil
}

func (s *azureStorage) GetImage(ctx context.Context, blobURL string) ([]byte, error) {
	containerName, blobName, err := ParseBlobURL(blobURL)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	return readLimited(resp.Body, s.maxBytes)
}

// IsBlobURL reports whether rawURL points at Azure blob storage
func IsBlobURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Hostname()), blobHostSuffix)
}

// ParseBlobURL splits a blob URL into container and blob name. Both the
// path form (/container/dir/blob.png) and the query form
// (/container?blob=dir/blob.png) are accepted.
func ParseBlobURL(rawURL string) (containerName, blobName string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob URL: %w", err)
	}

	path := strings.Trim(u.Path, "/")
	containerName, blobName, _ = strings.Cut(path, "/")
	if blobName == "" {
		blobName = u.Query().Get("blob")
	}
	if containerName == "" || blobName == "" {
		return "", "", fmt.Errorf("invalid blob URL %q: container and blob name required", rawURL)
	}
	return containerName, blobName, nil
}
