package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PlayPCM plays 16-bit mono PCM samples at the given sample rate through the
// default output device, blocking until playback completes. It is used by
// speech synthesizers to voice the practice phrase; callers that must not
// block should invoke it from a goroutine.
func PlayPCM(samples []int16, sampleRate int) error {
	if len(samples) == 0 {
		return nil
	}
	if sampleRate <= 0 {
		sampleRate = SampleRate
	}

	out := make([]int16, FramesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(0, Channels, float64(sampleRate), FramesPerBuffer, out)
	if err != nil {
		return fmt.Errorf("audio: open output device: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("audio: start output stream: %w", err)
	}
	defer stream.Stop()

	for off := 0; off < len(samples); off += FramesPerBuffer {
		end := off + FramesPerBuffer
		if end > len(samples) {
			end = len(samples)
		}
		n := copy(out, samples[off:end])
		// Zero-fill the tail of the final chunk.
		for i := n; i < len(out); i++ {
			out[i] = 0
		}
		if err := stream.Write(); err != nil {
			return fmt.Errorf("audio: write output stream: %w", err)
		}
	}

	return nil
}
