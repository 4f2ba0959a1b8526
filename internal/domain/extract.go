package domain

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrMissingInput is returned for empty or whitespace-only input.
	ErrMissingInput = errors.New("missing video url or id")

	// ErrInvalidInput is returned when the input matches none of the
	// recognized shapes.
	ErrInvalidInput = errors.New("unrecognized video url or id")
)

var (
	// watchURLPattern matches the three recognized URL shapes:
	// .../watch?v=ID, youtu.be/ID and .../embed/ID. The captured id is
	// everything up to the next &, newline, ? or #.
	watchURLPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`)

	// videoIDPattern is the canonical identifier shape.
	videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// ExtractVideoID parses free-form user input into a video identifier.
// URL-extracted ids are accepted as captured, without re-validation;
// the metadata gateway enforces the 11-character contract before any
// provider call. Bare input must match the canonical shape exactly.
func ExtractVideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrMissingInput
	}
	if m := watchURLPattern.FindStringSubmatch(input); m != nil {
		return m[1], nil
	}
	if videoIDPattern.MatchString(input) {
		return input, nil
	}
	return "", ErrInvalidInput
}

// IsValidVideoID reports whether id is a canonical 11-character
// identifier from [A-Za-z0-9_-].
func IsValidVideoID(id string) bool {
	return videoIDPattern.MatchString(id)
}
