package errors

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits shared by the stage and label editors.
const (
	MaxStageRows   = 50
	MaxStageCols   = 50
	MaxCellRatio   = 5.0
	MaxLabelLength = 8
)

// ValidateStage validates a grid configuration as the grid settings dialog
// does: rows and cols must be integers in [1, 50] and the cell ratio must
// lie in (0, 5].
func ValidateStage(rows, cols int, ratio float64) error {
	if rows < 1 || rows > MaxStageRows || cols < 1 || cols > MaxStageCols {
		return New(ErrCodeInvalidStage, "rows / cols must be 1-%d (got %dx%d)", MaxStageRows, rows, cols)
	}
	// NaN fails both comparisons, so test the accepted range positively.
	if !(ratio > 0 && ratio <= MaxCellRatio) {
		return New(ErrCodeInvalidStage, "ratio must be 0 < r <= %g (got %g)", MaxCellRatio, ratio)
	}
	return nil
}

// ValidateLabel validates a dancer label and returns it trimmed.
//
// Validation rules:
//   - Surrounding whitespace is removed
//   - The trimmed label cannot be empty
//   - At most 8 characters (runes, not bytes)
//   - No control characters
func ValidateLabel(label string) (string, error) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return "", New(ErrCodeInvalidLabel, "name required")
	}
	if n := utf8.RuneCountInString(trimmed); n > MaxLabelLength {
		return "", New(ErrCodeInvalidLabel, "name too long (%d characters, max %d)", n, MaxLabelLength)
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", New(ErrCodeInvalidLabel, "name contains invalid control characters")
		}
	}
	return trimmed, nil
}

// ValidateProjectPath validates the path of a project file before it is read.
// Projects are JSON documents and the loader refuses anything without a
// .json extension (case-insensitive).
func ValidateProjectPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	for _, r := range path {
		if r == '\x00' {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return New(ErrCodeInvalidPath, "select a JSON file (got %q)", filepath.Base(path))
	}
	return nil
}

// ValidateColor validates a palette color in #RRGGBB form.
func ValidateColor(color string) error {
	if len(color) != 7 || color[0] != '#' {
		return New(ErrCodeInvalidInput, "color must be #RRGGBB (got %q)", color)
	}
	for _, r := range color[1:] {
		if !unicode.Is(unicode.ASCII_Hex_Digit, r) {
			return New(ErrCodeInvalidInput, "color must be #RRGGBB (got %q)", color)
		}
	}
	return nil
}
