package audio

import (
	"fmt"
	"time"
)

const bytesPerSample = 2 // 16-bit signed little-endian

// validatePCM rejects buffers that cannot be a whole number of 16-bit
// samples. A malformed buffer is a decode failure: logged by the caller,
// never played.
func validatePCM(pcm []byte) error {
	if len(pcm) == 0 {
		return fmt.Errorf("empty audio buffer")
	}
	if len(pcm)%bytesPerSample != 0 {
		return fmt.Errorf("audio buffer length %d is not sample-aligned", len(pcm))
	}
	return nil
}

// pcmDuration returns the playback duration of a PCM buffer.
func pcmDuration(n, sampleRate, channels int) time.Duration {
	bytesPerSecond := sampleRate * channels * bytesPerSample
	if bytesPerSecond <= 0 || n <= 0 {
		return 0
	}
	return time.Duration(int64(n) * int64(time.Second) / int64(bytesPerSecond))
}
