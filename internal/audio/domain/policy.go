// Package domain holds the audio admission rules: extension resolution,
// container sniffing and content validation. It has no I/O.
package domain

import "strings"

// DefaultExtension is used when neither the MIME type nor the name yields one.
const DefaultExtension = "webm"

// Policy is the configured admission limits.
type Policy struct {
	MaxFileSize       int64
	AllowedMimeTypes  []string
	AllowedExtensions []string
	// RequireSignature rejects sniffable payloads whose header matches no
	// known container, regardless of the declared type.
	RequireSignature bool
}

// AllowsExtension reports whether ext is on the extension allow-list.
func (p Policy) AllowsExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return false
	}
	for _, allowed := range p.AllowedExtensions {
		if allowed == ext {
			return true
		}
	}
	return false
}

// AllowsMimeType reports whether the declared MIME type, stripped of
// parameters, is on the MIME allow-list.
func (p Policy) AllowsMimeType(mimeType string) bool {
	normalized := NormalizeMimeType(mimeType)
	if normalized == "" {
		return false
	}
	for _, allowed := range p.AllowedMimeTypes {
		if allowed == normalized {
			return true
		}
	}
	return false
}

// NormalizeMimeType lowercases a MIME type and drops parameters such as
// ";codecs=opus".
func NormalizeMimeType(mimeType string) string {
	normalized := strings.Split(mimeType, ";")[0]
	return strings.TrimSpace(strings.ToLower(normalized))
}
