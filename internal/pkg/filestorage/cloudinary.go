package filestorage

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/nitn/phd-admission/internal/pkg/logger"
	"github.com/rs/zerolog"
)

// CloudinaryDeliveryHost serves every asset of every Cloudinary account
const CloudinaryDeliveryHost = "res.cloudinary.com"

// CloudinaryBaseURL is the HTTPS prefix of the assets of one account
func CloudinaryBaseURL(cloudName string) string {
	return "https://" + CloudinaryDeliveryHost + "/" + cloudName + "/"
}

// cloudinaryAPI is the part of the Cloudinary upload API the store uses
type cloudinaryAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryStore uploads documents to Cloudinary
type CloudinaryStore struct {
	api    cloudinaryAPI
	logger zerolog.Logger
}

// NewCloudinaryStore creates a store from account credentials
func NewCloudinaryStore(cloudName, apiKey, apiSecret string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise cloudinary: %w", err)
	}
	return newCloudinaryStore(&cld.Upload), nil
}

func newCloudinaryStore(api cloudinaryAPI) *CloudinaryStore {
	return &CloudinaryStore{api: api, logger: logger.Component("cloudinary")}
}

// Upload sends the local file to Cloudinary and returns its HTTPS URL
func (s *CloudinaryStore) Upload(ctx context.Context, path string, opts UploadOptions) (*StoredObject, error) {
	resourceType := string(opts.ResourceType)
	if resourceType == "" {
		resourceType = "auto"
	}

	resp, err := s.api.Upload(ctx, path, uploader.UploadParams{
		Folder:       opts.Folder,
		ResourceType: resourceType,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("folder", opts.Folder).Msg("Cloudinary upload failed")
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("cloudinary upload: empty response")
	}
	if resp.Error.Message != "" {
		s.logger.Error().Str("error", resp.Error.Message).Str("folder", opts.Folder).Msg("Cloudinary rejected upload")
		return nil, fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}

	url := resp.SecureURL
	if url == "" {
		url = resp.URL
	}
	if url == "" {
		return nil, fmt.Errorf("cloudinary upload: response has no url")
	}
	if strings.HasPrefix(url, "http://") {
		url = "https://" + strings.TrimPrefix(url, "http://")
	}

	s.logger.Debug().Str("public_id", resp.PublicID).Msg("Uploaded to cloudinary")
	return &StoredObject{URL: url, PublicID: resp.PublicID}, nil
}

// Delete destroys an object; "not found" is treated as success
func (s *CloudinaryStore) Delete(ctx context.Context, publicID string, resourceType ResourceType) error {
	if publicID == "" {
		return nil
	}
	resp, err := s.api.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: string(resourceType),
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if resp != nil && resp.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", resp.Error.Message)
	}
	if resp != nil && resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy: unexpected result %q", resp.Result)
	}
	return nil
}
