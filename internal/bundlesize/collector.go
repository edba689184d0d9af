package bundlesize

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Collect reads the immediate files of dir and aggregates their sizes.
// Subdirectories are skipped. The order of Files follows directory enumeration.
func Collect(dir string) (*Analysis, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
		}
		return nil, fmt.Errorf("failed to stat build directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDirectoryNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read build directory: %w", err)
	}

	analysis := &Analysis{Files: make([]FileEntry, 0, len(entries))}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		fi, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		if fi.Mode()&fs.ModeSymlink != 0 {
			// Static hosts serve the link target
			fi, err = os.Stat(filepath.Join(dir, entry.Name()))
			if err != nil {
				log.Debug().Err(err).Str("file", entry.Name()).Msg("Skipping broken symlink")
				continue
			}
		}
		if !fi.Mode().IsRegular() {
			log.Debug().Str("file", entry.Name()).Msg("Skipping non-regular file")
			continue
		}

		size := fi.Size()
		analysis.TotalSize += size

		switch KindOf(entry.Name()) {
		case KindJS:
			analysis.JSSize += size
			analysis.ChunkCount++
		case KindCSS:
			analysis.CSSSize += size
		}

		analysis.Files = append(analysis.Files, NewFileEntry(entry.Name(), size))
	}

	log.Debug().
		Str("dir", dir).
		Int("files", len(analysis.Files)).
		Int64("total_bytes", analysis.TotalSize).
		Msg("Collected build output")

	return analysis, nil
}

// NewFileEntry builds a FileEntry with KB and MB sizes formatted to two decimals
func NewFileEntry(name string, size int64) FileEntry {
	return FileEntry{
		Name:   name,
		Size:   size,
		SizeKB: fmt.Sprintf("%.2f", float64(size)/KB),
		SizeMB: fmt.Sprintf("%.2f", float64(size)/MB),
	}
}

// KindOf classifies a file name by its extension
func KindOf(name string) Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".js":
		// Every script output counts as a chunk, entry bundles included.
		return KindJS
	case ".css":
		return KindCSS
	case ".html", ".htm":
		return KindHTML
	case ".map":
		return KindMap
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico", ".avif":
		return KindImage
	case ".woff", ".woff2", ".ttf", ".otf", ".eot":
		return KindFont
	default:
		return KindOther
	}
}

// NonEmptyBySize returns the files with a non-zero size, largest first.
// Ties are broken by name so the order is stable across runs.
func (a *Analysis) NonEmptyBySize() []FileEntry {
	files := make([]FileEntry, 0, len(a.Files))
	for _, f := range a.Files {
		if f.Size > 0 {
			files = append(files, f)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Size != files[j].Size {
			return files[i].Size > files[j].Size
		}
		return files[i].Name < files[j].Name
	})

	return files
}

// BytesByKind returns the total bytes per file kind
func (a *Analysis) BytesByKind() map[Kind]int64 {
	bytes := make(map[Kind]int64)
	for _, f := range a.Files {
		bytes[KindOf(f.Name)] += f.Size
	}
	return bytes
}
