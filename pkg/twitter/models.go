package twitter

// Tweet is the subset of a v1.1 status object threadgrab reads
type Tweet struct {
	IDStr                string            `json:"id_str"`
	FullText             string            `json:"full_text"`
	CreatedAt            string            `json:"created_at"`
	InReplyToStatusIDStr string            `json:"in_reply_to_status_id_str,omitempty"`
	QuotedStatusIDStr    string            `json:"quoted_status_id_str,omitempty"`
	User                 User              `json:"user"`
	ExtendedEntities     *ExtendedEntities `json:"extended_entities,omitempty"`
}

// User is the author of a post. Name and ScreenName are empty when the API
// returned a partial user.
type User struct {
	IDStr      string `json:"id_str"`
	Name       string `json:"name,omitempty"`
	ScreenName string `json:"screen_name,omitempty"`
}

// HasProfile reports whether both display fields are present
func (u User) HasProfile() bool {
	return u.Name != "" && u.ScreenName != ""
}

// IsReply reports whether the post answers another post
func (t *Tweet) IsReply() bool {
	return t.InReplyToStatusIDStr != ""
}

// ExtendedEntities holds the attached media
type ExtendedEntities struct {
	Media []Media `json:"media"`
}

// Media is a single attachment
type Media struct {
	IDStr     string     `json:"id_str,omitempty"`
	Type      string     `json:"type,omitempty"`
	VideoInfo *VideoInfo `json:"video_info,omitempty"`
}

// VideoInfo lists the encodings offered for a video attachment
type VideoInfo struct {
	Variants []Variant `json:"variants"`
}

// Variant is one encoding of a video. Bitrate is absent for streaming
// manifests.
type Variant struct {
	Bitrate     int    `json:"bitrate,omitempty"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}
