// Package model defines the course content tree and media data types.
package model

// MediaType is the declared kind of a media reference or asset.
type MediaType string

const (
	MediaImage   MediaType = "image"
	MediaAudio   MediaType = "audio"
	MediaCaption MediaType = "caption"
	MediaVideo   MediaType = "video"
	MediaYouTube MediaType = "youtube"
)

// ValidMediaTypes are the allowed media types.
var ValidMediaTypes = map[MediaType]bool{
	MediaImage:   true,
	MediaAudio:   true,
	MediaCaption: true,
	MediaVideo:   true,
	MediaYouTube: true,
}

// IsNarration reports whether the type takes part in narration block numbering.
func (t MediaType) IsNarration() bool {
	return t == MediaAudio || t == MediaCaption
}

// IsVideo reports whether video-only fields are legitimate for the type.
func (t MediaType) IsVideo() bool {
	return t == MediaVideo || t == MediaYouTube
}

// MediaReference is an embedded pointer from a page or topic to a stored asset.
type MediaReference struct {
	ID     string     `json:"id"`
	Type   MediaType  `json:"type"`
	URL    string     `json:"url,omitempty"`
	Title  string     `json:"title,omitempty"`
	PageID string     `json:"pageId,omitempty"`
	Video  *VideoClip `json:"video,omitempty"`
}

// VideoClip holds the fields that only video references may carry.
type VideoClip struct {
	IsYouTube bool   `json:"isYouTube,omitempty"`
	EmbedURL  string `json:"embedUrl,omitempty"`
	ClipStart *int   `json:"clipStart,omitempty"`
	ClipEnd   *int   `json:"clipEnd,omitempty"`
}

func (v *VideoClip) clone() *VideoClip {
	if v == nil {
		return nil
	}
	c := *v
	if v.ClipStart != nil {
		s := *v.ClipStart
		c.ClipStart = &s
	}
	if v.ClipEnd != nil {
		e := *v.ClipEnd
		c.ClipEnd = &e
	}
	return &c
}

// Clone returns a deep copy of the reference.
func (r MediaReference) Clone() MediaReference {
	r.Video = r.Video.clone()
	return r
}
