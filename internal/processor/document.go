// Package processor turns downloaded agency PDFs into chunked, metadata-rich
// documents ready for embedding and indexing.
package processor

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Document is a processed source file.
type Document struct {
	DocID     string    `json:"doc_id"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Section   string    `json:"section"`
	Date      string    `json:"date,omitempty"`
	Filepath  string    `json:"filepath"`
	Filename  string    `json:"filename"`
	FileSize  int64     `json:"file_size"`
	IsScanned bool      `json:"is_scanned"`
	FullText  string    `json:"full_text"`
	Chunks    []Chunk   `json:"text_chunks"`
	NumPages  int       `json:"num_pages"`
	Processed time.Time `json:"processed_at"`
}

// Chunk is a searchable unit of a document.
type Chunk struct {
	ChunkID int    `json:"chunk_id"`
	Text    string `json:"text"`

	// Page is the 1-based page the chunk starts on, 0 when unknown.
	Page int `json:"page,omitempty"`
}

// scannedTextThreshold is the minimum extracted character count below which a
// PDF is treated as scanned (image-only).
const scannedTextThreshold = 50

var (
	datePattern    = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)
	sectionPattern = regexp.MustCompile(`^([A-Za-z]+)_`)
	pageMarker     = regexp.MustCompile(`\[Page\s+(\d+)\]`)
)

// GenerateDocID derives a stable document ID from the file's path, size and
// modification time. Re-downloading an unchanged file yields the same ID;
// a changed file gets a new one.
func GenerateDocID(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	content := fmt.Sprintf("%s_%d_%f", path, info.Size(), float64(info.ModTime().UnixNano())/1e9)
	return fmt.Sprintf("%x", md5.Sum([]byte(content))), nil
}

// FileMetadata is what can be inferred from a file's location and name alone.
type FileMetadata struct {
	Filename string
	FileSize int64
	Source   string
	Section  string
	Date     string
}

// ExtractFileMetadata infers metadata from the download path convention
// downloads/<source>/<Section_Title_Date.pdf>.
func ExtractFileMetadata(path string) FileMetadata {
	meta := FileMetadata{
		Filename: filepath.Base(path),
		Source:   "unknown",
	}

	if info, err := os.Stat(path); err == nil {
		meta.FileSize = info.Size()
	}

	parts := strings.Split(path, string(os.PathSeparator))
	for i, part := range parts {
		if part == "downloads" && i+1 < len(parts) {
			meta.Source = parts[i+1]
			break
		}
	}

	if m := datePattern.FindStringSubmatch(meta.Filename); m != nil {
		meta.Date = m[1]
	}
	if m := sectionPattern.FindStringSubmatch(meta.Filename); m != nil {
		meta.Section = m[1]
	}

	return meta
}

// TitleFromFilename derives a readable title from a sanitized filename.
func TitleFromFilename(filename string) string {
	title := strings.TrimSuffix(filename, filepath.Ext(filename))
	return strings.ReplaceAll(title, "_", " ")
}

// pageOf returns the first page marker found in the text, 0 when absent.
func pageOf(text string) int {
	m := pageMarker.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	var page int
	fmt.Sscanf(m[1], "%d", &page)
	return page
}
