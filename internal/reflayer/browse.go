package reflayer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evnlme/RefLayer/internal/document"
)

// siblingImages lists the decodable images in path's directory, sorted
// case-insensitively by name so next/prev are stable across platforms.
func siblingImages(path string) ([]string, error) {
	dir := filepath.Dir(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if document.IsSupportedImage(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Slice(paths, func(i, j int) bool {
		a, b := strings.ToLower(paths[i]), strings.ToLower(paths[j])
		if a != b {
			return a < b
		}
		return paths[i] < paths[j]
	})
	return paths, nil
}

// step returns the image delta positions away from path in its sorted
// directory listing, wrapping at both ends.
func step(path string, delta int) (string, error) {
	paths, err := siblingImages(path)
	if err != nil {
		return "", err
	}
	for i, p := range paths {
		if p == path {
			n := len(paths)
			return paths[((i+delta)%n+n)%n], nil
		}
	}
	return "", fmt.Errorf("%s not found among images in its directory", path)
}

// NextImage returns the image after path in its directory, wrapping to
// the first after the last.
func NextImage(path string) (string, error) {
	return step(path, 1)
}

// PrevImage returns the image before path in its directory. It is the
// exact inverse of NextImage.
func PrevImage(path string) (string, error) {
	return step(path, -1)
}
