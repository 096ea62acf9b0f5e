package api

import "strings"

// MediaURLs builds absolute URLs for stored files.
type MediaURLs struct {
	base string
}

// NewMediaURLs takes the public media root, e.g. https://example.com/uploads.
func NewMediaURLs(base string) MediaURLs {
	return MediaURLs{base: strings.TrimRight(base, "/")}
}

func (u MediaURLs) Image(name string) string {
	return u.base + "/images/" + name
}

func (u MediaURLs) Thumbnail(name string) string {
	return u.base + "/thumbnails/" + name
}
