// Package validate enforces the path-safety contract for caller-supplied
// names. Unsafe input is always rejected, never sanitized-and-continued.
package validate

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jotlog/jotlog/internal/model"
)

// projectRe keeps project folder names to a conservative charset so they
// are safe on every filesystem we care about.
var projectRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 _.-]{0,63}$`)

// ProjectFolder validates a caller-supplied project folder name.
func ProjectFolder(name string) error {
	if name == "" {
		return fmt.Errorf("%w: project folder is required", model.ErrValidation)
	}
	if err := rejectTraversal(name); err != nil {
		return err
	}
	if !projectRe.MatchString(name) || strings.HasSuffix(name, ".") {
		return fmt.Errorf("%w: invalid project folder %q", model.ErrValidation, name)
	}
	return nil
}

// AssetFilename validates a single filename component for the assets
// directory.
func AssetFilename(name string) error {
	if name == "" {
		return fmt.Errorf("%w: filename is required", model.ErrValidation)
	}
	if err := rejectTraversal(name); err != nil {
		return err
	}
	if name != filepath.Base(name) {
		return fmt.Errorf("%w: %q", model.ErrPathTraversal, name)
	}
	return nil
}

// WithinRoot resolves rel against root and verifies the result cannot
// escape root. Used before every filesystem operation on derived paths.
func WithinRoot(root, rel string) (string, error) {
	if err := rejectTraversal(rel); err != nil {
		return "", err
	}
	joined := filepath.Join(root, rel)
	r, err := filepath.Rel(root, joined)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", model.ErrPathTraversal, rel)
	}
	return joined, nil
}

func rejectTraversal(s string) error {
	if strings.ContainsRune(s, 0) {
		return fmt.Errorf("%w: null byte in %q", model.ErrPathTraversal, s)
	}
	if filepath.IsAbs(s) || strings.HasPrefix(s, "/") || strings.HasPrefix(s, `\`) {
		return fmt.Errorf("%w: absolute path %q", model.ErrPathTraversal, s)
	}
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return fmt.Errorf("%w: %q", model.ErrPathTraversal, s)
		}
	}
	return nil
}
