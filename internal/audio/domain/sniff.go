package domain

// Container is an audio container recognised from its leading bytes.
type Container string

const (
	ContainerUnknown Container = ""
	ContainerWebM    Container = "webm"
	ContainerMP4     Container = "mp4"
	ContainerMP3     Container = "mp3"
	ContainerWAV     Container = "wav"
	ContainerOgg     Container = "ogg"
)

// SniffThreshold is the payload size a header must exceed to be inspected.
const SniffThreshold = 12

// SniffContainer matches the first bytes of payload against known audio
// signatures. Payloads of SniffThreshold bytes or fewer are not inspected.
func SniffContainer(payload []byte) Container {
	if len(payload) <= SniffThreshold {
		return ContainerUnknown
	}
	h := payload[:SniffThreshold]

	switch {
	case h[0] == 0x1A && h[1] == 0x45:
		return ContainerWebM
	case h[4] == 0x66 && h[5] == 0x74 && h[6] == 0x79 && h[7] == 0x70:
		return ContainerMP4
	case h[0] == 0xFF && h[1]&0xE0 == 0xE0:
		return ContainerMP3
	case h[0] == 0x52 && h[1] == 0x49 && h[2] == 0x46 && h[3] == 0x46:
		return ContainerWAV
	case h[0] == 0x4F && h[1] == 0x67 && h[2] == 0x67 && h[3] == 0x53:
		return ContainerOgg
	default:
		return ContainerUnknown
	}
}
