package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Responsive poster widths, widest first. The primary rendition is 1280×720;
// these are the breakpoint variants served to smaller viewports.
var posterBreakpoints = []int{640, 480, 320}

// CloudinaryStore implements Store on top of the Cloudinary upload API.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
	log *zap.Logger
}

// NewCloudinary builds a CloudinaryStore from injected credentials.
func NewCloudinary(cloudName, apiKey, apiSecret string, logger *zap.Logger) (*CloudinaryStore, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials are not configured")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryStore{cld: cld, log: logger}, nil
}

// UploadPoster stores an image under posters/ with a generated public id.
// The responsive variant URLs are derived transformations of the primary
// rendition, so they cost nothing to create and nothing extra to release.
func (s *CloudinaryStore) UploadPoster(ctx context.Context, r io.Reader) (Asset, error) {
	publicID := "posters/" + uuid.NewString()
	res, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:       publicID,
		Transformation: "c_limit,w_1280,h_720",
	})
	if err != nil {
		return Asset{}, fmt.Errorf("upload poster: %w", err)
	}

	asset := Asset{URL: res.SecureURL, PublicID: res.PublicID}
	for _, w := range posterBreakpoints {
		if v, ok := scaledURL(res.SecureURL, w); ok {
			asset.Responsive = append(asset.Responsive, v)
		}
	}

	s.log.Info("poster uploaded",
		zap.String("public_id", asset.PublicID),
		zap.Int("responsive_variants", len(asset.Responsive)))
	return asset, nil
}

// UploadTrailer stores a video under trailers/.
func (s *CloudinaryStore) UploadTrailer(ctx context.Context, r io.Reader) (Asset, error) {
	res, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:     "trailers/" + uuid.NewString(),
		ResourceType: "video",
	})
	if err != nil {
		return Asset{}, fmt.Errorf("upload trailer: %w", err)
	}

	s.log.Info("trailer uploaded", zap.String("public_id", res.PublicID))
	return Asset{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

// Destroy releases a remote object. Cloudinary reports success as
// result == "ok"; anything else ("not found" included) is unconfirmed.
func (s *CloudinaryStore) Destroy(ctx context.Context, publicID, kind string) error {
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: kind,
	})
	if err != nil {
		return fmt.Errorf("destroy %s %s: %w", kind, publicID, err)
	}
	if res.Result != "ok" {
		s.log.Warn("media release unconfirmed",
			zap.String("public_id", publicID),
			zap.String("result", res.Result))
		return ErrNotConfirmed
	}
	return nil
}

// scaledURL inserts a width transformation into a Cloudinary delivery URL:
// .../image/upload/<rest> → .../image/upload/c_scale,w_640/<rest>.
func scaledURL(secureURL string, width int) (string, bool) {
	const marker = "/image/upload/"
	idx := strings.Index(secureURL, marker)
	if idx < 0 {
		return "", false
	}
	insert := fmt.Sprintf("c_scale,w_%d/", width)
	return secureURL[:idx+len(marker)] + insert + secureURL[idx+len(marker):], true
}
