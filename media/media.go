// Package media stores image payloads with the external media service and
// hands back durable public URLs.
package media

import (
	"context"
	"io"
)

// Upload folders, used as the service-side classifier.
const (
	FolderPosts   = "ripple/posts"
	FolderAvatars = "ripple/avatars"
	FolderBanners = "ripple/banners"
)

type Uploader interface {
	// Upload stores the image and returns its public URL.
	Upload(ctx context.Context, file io.Reader, folder, publicID string) (string, error)
}
