package filestorage

import (
	"context"
)

// ResourceType tells the store how to treat an uploaded object
type ResourceType string

const (
	ResourceImage ResourceType = "image"
	ResourceRaw   ResourceType = "raw"
)

// UploadOptions controls where and how a file is stored
type UploadOptions struct {
	Folder       string
	ResourceType ResourceType
}

// StoredObject is the result of a successful upload
type StoredObject struct {
	URL      string // Publicly reachable URL of the object
	PublicID string // Store-specific identifier used for deletion
}

// DocumentStore defines the interface for the external document store
type DocumentStore interface {
	// Upload copies the local file at path into the store
	Upload(ctx context.Context, path string, opts UploadOptions) (*StoredObject, error)

	// Delete removes an object by its public id; missing objects are not an error
	Delete(ctx context.Context, publicID string, resourceType ResourceType) error
}
