package model

// Details is the type-specific view of an asset's metadata. The set of
// implementations is closed: exactly one per media type family.
type Details interface {
	MediaType() MediaType
	details()
}

// ImageDetails describes an image asset.
type ImageDetails struct {
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type,omitempty"`
	Title        string `json:"title,omitempty"`
}

// AudioDetails describes a narration audio asset.
type AudioDetails struct {
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type,omitempty"`
}

// CaptionDetails describes a caption track.
type CaptionDetails struct {
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type,omitempty"`
}

// VideoDetails describes a video asset, uploaded or embedded from YouTube.
type VideoDetails struct {
	Kind         MediaType `json:"kind"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type,omitempty"`
	Title        string    `json:"title,omitempty"`
	IsYouTube    bool      `json:"is_youtube,omitempty"`
	EmbedURL     string    `json:"embed_url,omitempty"`
	ClipStart    *int      `json:"clip_start,omitempty"`
	ClipEnd      *int      `json:"clip_end,omitempty"`
}

func (ImageDetails) MediaType() MediaType   { return MediaImage }
func (AudioDetails) MediaType() MediaType   { return MediaAudio }
func (CaptionDetails) MediaType() MediaType { return MediaCaption }
func (d VideoDetails) MediaType() MediaType { return d.Kind }

func (ImageDetails) details()   {}
func (AudioDetails) details()   {}
func (CaptionDetails) details() {}
func (VideoDetails) details()   {}

// DetailsFor builds the variant for the declared type of m. Only the fields
// that belong to that variant are read. Unknown types resolve as images.
func DetailsFor(m Metadata) Details {
	switch m.Type {
	case MediaAudio:
		return AudioDetails{OriginalName: m.OriginalName, MimeType: m.MimeType}
	case MediaCaption:
		return CaptionDetails{OriginalName: m.OriginalName, MimeType: m.MimeType}
	case MediaVideo, MediaYouTube:
		return VideoDetails{
			Kind:         m.Type,
			OriginalName: m.OriginalName,
			MimeType:     m.MimeType,
			Title:        m.Title,
			IsYouTube:    m.Type == MediaYouTube || m.IsYouTube || m.Source == "youtube",
			EmbedURL:     m.EmbedURL,
			ClipStart:    m.ClipStart,
			ClipEnd:      m.ClipEnd,
		}
	default:
		return ImageDetails{OriginalName: m.OriginalName, MimeType: m.MimeType, Title: m.Title}
	}
}
