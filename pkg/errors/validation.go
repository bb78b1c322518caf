package errors

import (
	"strings"
	"unicode"
)

// ValidateDatasetName validates a dataset name used as a lookup key
// (Mongo document name, cache scope prefix). The rules are intentionally
// conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences
//   - Maximum length of 256 characters
func ValidateDatasetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidDataset, "dataset name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidDataset, "dataset name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDataset, "dataset name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidDataset, "dataset name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidatePath validates a content path (image or document reference)
// relative to the content root. It prevents path traversal and ensures
// reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateMode validates a dataset mode string.
func ValidateMode(mode string) error {
	switch mode {
	case "", "image", "text":
		return nil
	default:
		return New(ErrCodeInvalidMode, "unknown dataset mode: %q (want image or text)", mode)
	}
}

// ValidateViewport validates snapshot viewport parameters.
func ValidateViewport(width, height float64) error {
	const maxDimension = 8192
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidView, "viewport dimensions must be positive, got %gx%g", width, height)
	}
	if width > maxDimension || height > maxDimension {
		return New(ErrCodeInvalidView, "viewport dimensions too large (max %d)", maxDimension)
	}
	return nil
}

// ValidateZoom validates a requested zoom level against fixed sanity
// bounds. The engine clamps to the dataset-derived bounds afterwards.
func ValidateZoom(zoom float64) error {
	if zoom <= 0 {
		return New(ErrCodeInvalidView, "zoom must be positive, got %g", zoom)
	}
	if zoom > 100 {
		return New(ErrCodeInvalidView, "zoom too large, got %g", zoom)
	}
	return nil
}
