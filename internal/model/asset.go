package model

import "time"

// Metadata is the loosely typed metadata upstream writers attach to a stored asset.
// Fields may be populated that do not belong to the declared Type; see Sanitize.
type Metadata struct {
	PageID       string    `json:"page_id"`
	Type         MediaType `json:"type"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type,omitempty"`
	Source       string    `json:"source,omitempty"`
	EmbedURL     string    `json:"embed_url,omitempty"`
	Title        string    `json:"title,omitempty"`
	IsYouTube    bool      `json:"isYouTube,omitempty"`
	ClipStart    *int      `json:"clip_start,omitempty"`
	ClipEnd      *int      `json:"clip_end,omitempty"`
}

// AssetRecord is a stored media asset: payload plus metadata.
type AssetRecord struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Rev       string    `json:"rev,omitempty"`
	Data      []byte    `json:"data,omitempty"`
	Size      int64     `json:"size"`
	Metadata  Metadata  `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

// Sanitize returns a copy of m with every field foreign to the declared type
// cleared, together with the names of the fields that were cleared.
// Video and youtube records are returned unchanged.
func (m Metadata) Sanitize() (Metadata, []string) {
	if m.Type.IsVideo() {
		return m, nil
	}
	var stripped []string
	if m.IsYouTube {
		m.IsYouTube = false
		stripped = append(stripped, "isYouTube")
	}
	if m.Source == "youtube" {
		m.Source = ""
		stripped = append(stripped, "source")
	}
	if m.EmbedURL != "" {
		m.EmbedURL = ""
		stripped = append(stripped, "embed_url")
	}
	if m.ClipStart != nil {
		m.ClipStart = nil
		stripped = append(stripped, "clip_start")
	}
	if m.ClipEnd != nil {
		m.ClipEnd = nil
		stripped = append(stripped, "clip_end")
	}
	return m, stripped
}
