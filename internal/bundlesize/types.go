// Package bundlesize collects size information about a front-end build output directory.
package bundlesize

import "errors"

// ErrDirectoryNotFound is returned when the build output directory does not exist
var ErrDirectoryNotFound = errors.New("build directory not found")

const (
	// KB is the number of bytes in a kilobyte
	KB = 1024
	// MB is the number of bytes in a megabyte
	MB = 1024 * KB
)

// FileEntry describes a single file in the build output
type FileEntry struct {
	Name   string `json:"name" yaml:"name"`
	Size   int64  `json:"sizeBytes" yaml:"sizeBytes"`
	SizeKB string `json:"sizeKB" yaml:"sizeKB"`
	SizeMB string `json:"sizeMB" yaml:"sizeMB"`
}

// Analysis contains the aggregated sizes of a build output directory
type Analysis struct {
	Files      []FileEntry `json:"files" yaml:"files"`
	TotalSize  int64       `json:"totalSize" yaml:"totalSize"`
	JSSize     int64       `json:"jsSize" yaml:"jsSize"`
	CSSSize    int64       `json:"cssSize" yaml:"cssSize"`
	ChunkCount int         `json:"chunks" yaml:"chunks"`
}

// Kind is the coarse file type used for aggregation and display
type Kind string

const (
	KindJS    Kind = "js"
	KindCSS   Kind = "css"
	KindHTML  Kind = "html"
	KindMap   Kind = "map"
	KindImage Kind = "image"
	KindFont  Kind = "font"
	KindOther Kind = "other"
)
