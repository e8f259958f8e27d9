package domain

import (
	"fmt"

	"voicerly_backend/platform/apperr"
)

const (
	MsgFileEmpty          = "File is empty"
	MsgInvalidExtension   = "Invalid file extension. Only audio files are allowed"
	MsgInvalidAudioFormat = "Invalid audio file format"
)

// Validate runs the structural checks and then header sniffing. A payload
// whose header matches no signature is still accepted when either the
// declared MIME type or the resolved extension is allow-listed, unless the
// policy requires a signature match.
func Validate(payload []byte, resolvedExtension, declaredMimeType string, policy Policy) error {
	size := int64(len(payload))
	if size == 0 {
		return apperr.Validation(MsgFileEmpty)
	}
	if size > policy.MaxFileSize {
		return apperr.Validation(fmt.Sprintf("File too large. Maximum size is %s", formatSize(policy.MaxFileSize)))
	}
	if !policy.AllowsExtension(resolvedExtension) {
		return apperr.Validation(MsgInvalidExtension)
	}

	if len(payload) > SniffThreshold && SniffContainer(payload) == ContainerUnknown {
		if policy.RequireSignature {
			return apperr.Validation(MsgInvalidAudioFormat)
		}
		if !policy.AllowsMimeType(declaredMimeType) && !policy.AllowsExtension(resolvedExtension) {
			return apperr.Validation(MsgInvalidAudioFormat)
		}
	}

	return nil
}

func formatSize(bytes int64) string {
	const mb = 1024 * 1024
	if bytes%mb == 0 {
		return fmt.Sprintf("%dMB", bytes/mb)
	}
	return fmt.Sprintf("%d bytes", bytes)
}
