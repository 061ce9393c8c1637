package storage

import (
	"context"
)

// Client is the content-addressed storage collaborator contract. Put pins
// bytes and returns the content identifier; Get retrieves them by CID.
type Client interface {
	Put(ctx context.Context, data []byte, filename, mimeType string) (string, error)
	Get(ctx context.Context, cid string) ([]byte, string, error)
}
