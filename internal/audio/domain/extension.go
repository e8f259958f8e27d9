package domain

import "strings"

// mimeExtensions is checked in order; the first token found in the declared
// MIME type wins.
var mimeExtensions = []struct {
	tokens    []string
	extension string
}{
	{[]string{"mp4", "m4a"}, "mp4"},
	{[]string{"webm"}, "webm"},
	{[]string{"wav"}, "wav"},
	{[]string{"ogg"}, "ogg"},
	{[]string{"mp3", "mpeg"}, "mp3"},
	{[]string{"aac"}, "aac"},
}

// ResolveExtension picks the canonical extension for an upload. A recognised
// audio token in the declared MIME type wins; otherwise the sanitized name's
// extension is used when allow-listed; otherwise DefaultExtension.
func ResolveExtension(declaredMimeType, sanitizedName string, policy Policy) string {
	mimeType := strings.ToLower(declaredMimeType)
	for _, candidate := range mimeExtensions {
		for _, token := range candidate.tokens {
			if strings.Contains(mimeType, token) {
				return candidate.extension
			}
		}
	}

	if idx := strings.LastIndex(sanitizedName, "."); idx >= 0 {
		ext := strings.ToLower(sanitizedName[idx+1:])
		if policy.AllowsExtension(ext) {
			return ext
		}
	}

	return DefaultExtension
}
