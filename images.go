package wikidump

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

// FilePrefix starts the title of every media file page.
const FilePrefix = "File:"

// Image is what we learn about a media file from its page.
type Image struct {
	Categories  []string `json:"categories"`
	Timestamp   string   `json:"timestamp"`
	Username    string   `json:"username"`
	Date        string   `json:"date,omitempty"`
	Author      string   `json:"author,omitempty"`
	Description string   `json:"description,omitempty"`
	License     string   `json:"license,omitempty"`
	Location    *Coord   `json:"location,omitempty"`
}

// NewImage extracts the image metadata of a file page revision.
func NewImage(rev *Revision, categories []string) *Image {
	img := &Image{
		Categories: categories,
		Timestamp:  rev.Timestamp,
		Username:   rev.Contributor.Username,
	}
	text := rev.Text
	if v, ok := FindDate(text); ok {
		img.Date = v
	}
	if v, ok := FindAuthor(text); ok {
		img.Author = v
	}
	if v, ok := FindDescription(text); ok {
		img.Description = v
	}
	if v, ok := FindLicense(text); ok {
		img.License = v
	}
	if loc, err := ParseLocation(text); err == nil {
		img.Location = &loc
	}
	return img
}

// FileName strips the "File:" prefix from a page title.
func FileName(title string) string {
	return strings.TrimPrefix(title, FilePrefix)
}

// Extension gets the lower-cased extension of a file page title.
func Extension(title string) string {
	i := strings.LastIndexByte(title, '.')
	if i < 0 {
		return strings.ToLower(title)
	}
	return strings.ToLower(title[i+1:])
}

// URLForFile gets the wikimedia URL for the given named file.
func URLForFile(name string) string {
	m := md5.New()
	name = strings.Replace(name, " ", "_", -1)
	m.Write([]byte(name))
	h := hex.EncodeToString(m.Sum([]byte{}))

	return "https://upload.wikimedia.org/wikipedia/commons/" +
		string(h[0]) + "/" + h[0:2] + "/" + url.QueryEscape(name)
}
