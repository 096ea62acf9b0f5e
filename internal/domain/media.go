package domain

import "io"

// Upload is an image received from a client that has not been stored yet.
type Upload struct {
	OriginalFilename string
	MimeType         string
	Size             int64
	Data             io.ReadSeeker
}

// StoredImage is what the media pipeline reports after persisting an upload
// together with its thumbnail.
type StoredImage struct {
	ImageFilename     Filename
	ThumbnailFilename Filename
	MimeType          string
	SizeBytes         int64
	Width             int
	Height            int
}

// Files lists the stored filenames, skipping empty ones.
func (i StoredImage) Files() []Filename {
	files := make([]Filename, 0, 2)
	if i.ImageFilename != "" {
		files = append(files, i.ImageFilename)
	}
	if i.ThumbnailFilename != "" {
		files = append(files, i.ThumbnailFilename)
	}
	return files
}
