package imagesrc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var supportedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
	".webp": true,
	".tif":  true,
	".tiff": true,
}

// Supported reports whether path has an extension Decode understands.
func Supported(path string) bool {
	return supportedExt[strings.ToLower(filepath.Ext(path))]
}

// ErrNoImages is returned when a directory holds nothing decodable.
var ErrNoImages = errors.New("no supported images found")

// Scan lists the images at path. A file yields itself; a directory yields
// its supported files in lexical order, descending into subdirectories
// when recursive is set. Unreadable entries are skipped.
func Scan(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var images []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == path {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if p != path && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if Supported(p) {
			images = append(images, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	sort.Strings(images)
	if len(images) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoImages)
	}
	return images, nil
}

// Resolve turns a wallpaper path into one file. A directory yields its
// first image in lexical order; anything else is returned unchanged for
// Decode to report on.
func Resolve(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return path, nil
	}
	images, err := Scan(path, false)
	if err != nil {
		return "", err
	}
	return images[0], nil
}
