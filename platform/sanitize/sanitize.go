// Package sanitize provides input sanitization for user-supplied names.
package sanitize

import (
	"regexp"
	"strings"
)

// MaxFileNameLength bounds the sanitized file name.
const MaxFileNameLength = 100

var (
	unsafeFileNameChars = regexp.MustCompile(`[^A-Za-z0-9.-]`)
	repeatedDots        = regexp.MustCompile(`\.{2,}`)
)

// FileName strips every character outside [A-Za-z0-9.-], collapses runs of
// dots, trims leading and trailing dots and truncates to MaxFileNameLength.
// An empty result means the caller has no usable name.
func FileName(raw string) string {
	result := unsafeFileNameChars.ReplaceAllString(raw, "")
	result = repeatedDots.ReplaceAllString(result, ".")
	result = strings.Trim(result, ".")
	if len(result) > MaxFileNameLength {
		result = result[:MaxFileNameLength]
	}
	return result
}
