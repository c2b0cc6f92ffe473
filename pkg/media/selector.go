// Package media picks the video resource to hand to the downloader.
package media

import (
	"strings"

	"threadgrab/pkg/twitter"
)

// ManifestContentType is the content type of an HLS playlist variant
const ManifestContentType = "application/x-mpegURL"

// SelectVariant returns the first streaming manifest variant of the first
// attached media item. Only the first item is considered and bitrate is
// ignored. ok is false when there is no usable media.
func SelectVariant(entities *twitter.ExtendedEntities) (variant twitter.Variant, ok bool) {
	if entities == nil || len(entities.Media) == 0 {
		return twitter.Variant{}, false
	}

	info := entities.Media[0].VideoInfo
	if info == nil {
		return twitter.Variant{}, false
	}

	for _, v := range info.Variants {
		if strings.EqualFold(v.ContentType, ManifestContentType) && v.URL != "" {
			return v, true
		}
	}

	return twitter.Variant{}, false
}
