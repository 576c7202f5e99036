// Package content provides the platform-independent content model and
// the thread splitter used by multi-chunk post types.
package content

import "time"

// PostType identifies the shape of a post.
type PostType string

const (
	PostTypePost      PostType = "post"
	PostTypeThread    PostType = "thread"
	PostTypeStory     PostType = "story"
	PostTypeReel      PostType = "reel"
	PostTypeCarousel  PostType = "carousel"
	PostTypeSlideshow PostType = "slideshow"
	PostTypeVideo     PostType = "video"
	PostTypePin       PostType = "pin"
)

// MediaKind identifies the kind of a media item.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaGIF   MediaKind = "gif"
)

// MediaRef references one media item attached to a post. Media bytes live
// in external storage; the orchestrator only carries descriptors.
type MediaRef struct {
	URL         string        `json:"url"`
	Kind        MediaKind     `json:"kind"`
	AltText     string        `json:"alt_text,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	AspectRatio string        `json:"aspect_ratio,omitempty"`
	SizeBytes   int64         `json:"size_bytes,omitempty"`
}

// IsVideo reports whether the media item is a video.
func (m MediaRef) IsVideo() bool {
	return m.Kind == MediaVideo
}

// IsImage reports whether the media item is a still image (GIFs count).
func (m MediaRef) IsImage() bool {
	return m.Kind == MediaImage || m.Kind == MediaGIF
}

// CountKinds returns how many items of each kind the list contains.
func CountKinds(media []MediaRef) map[MediaKind]int {
	counts := make(map[MediaKind]int, len(media))
	for _, m := range media {
		counts[m.Kind]++
	}
	return counts
}
