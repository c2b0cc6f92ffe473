// Package metadata derives the container tags written alongside each video.
package metadata

import (
	"fmt"

	"threadgrab/pkg/twitter"
)

// Tags are the container metadata written into a downloaded video
type Tags struct {
	Title   string
	Artist  string
	Comment string
}

// FromTweet builds tags from a post. ok is false when the author lacks a
// display name or handle, in which case the video is written untagged.
func FromTweet(t *twitter.Tweet) (tags Tags, ok bool) {
	if t == nil || !t.User.HasProfile() {
		return Tags{}, false
	}

	return Tags{
		Title:   t.FullText,
		Artist:  fmt.Sprintf("%s (@%s)", t.User.Name, t.User.ScreenName),
		Comment: twitter.GetTweetURL(t.User.ScreenName, t.IDStr),
	}, true
}

// Args renders the tags as ordered -metadata key=value argument pairs.
// Empty values are left out.
func (t Tags) Args() []string {
	var args []string
	for _, kv := range [][2]string{
		{"title", t.Title},
		{"artist", t.Artist},
		{"comment", t.Comment},
	} {
		if kv[1] == "" {
			continue
		}
		args = append(args, "-metadata", kv[0]+"="+kv[1])
	}
	return args
}

// IsZero reports whether no tag is set
func (t Tags) IsZero() bool {
	return t == Tags{}
}
