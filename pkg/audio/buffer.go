// Package audio provides microphone capture and speaker playback for the
// practice pipeline, plus the [Buffer] type handed to speech recognizers.
//
// All capture uses a fixed format: 16 kHz, mono, 16-bit signed PCM — the
// format whisper models expect. A Buffer is owned by exactly one component
// at a time: the [Capture] while a recording is in progress, then the caller
// after [Capture.Stop] returns it.
package audio

import (
	"encoding/binary"
	"time"
)

const (
	// SampleRate is the fixed capture sample rate in Hz (whisper requirement).
	SampleRate = 16000

	// Channels is the fixed channel count (mono).
	Channels = 1

	// FramesPerBuffer is the number of samples read from the device per chunk.
	FramesPerBuffer = 1024

	// bitsPerSample is fixed at 16 for signed little-endian PCM.
	bitsPerSample = 16

	// MinSamples is the minimum buffer length delivered to a recognizer.
	// Whisper rejects inputs shorter than ~100 ms; 200 ms leaves headroom.
	MinSamples = SampleRate / 5
)

// Buffer is an ordered sequence of 16-bit mono PCM samples at [SampleRate].
type Buffer []int16

// Duration returns the playing time of the buffer.
func (b Buffer) Duration() time.Duration {
	return time.Duration(len(b)) * time.Second / SampleRate
}

// Float32 converts the buffer to float32 samples normalised to [-1.0, 1.0],
// the representation expected by the whisper.cpp bindings.
func (b Buffer) Float32() []float32 {
	out := make([]float32, len(b))
	for i, s := range b {
		out[i] = float32(s) / 32768.0
	}
	return out
}

// WAV wraps the buffer in a standard RIFF/WAV container. The result is
// suitable for a multipart form upload to a whisper-server instance.
func (b Buffer) WAV() []byte {
	byteRate := SampleRate * Channels * bitsPerSample / 8
	blockAlign := Channels * bitsPerSample / 8
	dataSize := len(b) * 2

	buf := make([]byte, 44+dataSize)

	// RIFF chunk descriptor
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize)) // file size − 8
	copy(buf[8:12], "WAVE")

	// fmt sub-chunk
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)                 // sub-chunk size (PCM)
	binary.LittleEndian.PutUint16(buf[20:22], 1)                  // audio format: PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(Channels))   // num channels
	binary.LittleEndian.PutUint32(buf[24:28], uint32(SampleRate)) // sample rate
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))   // byte rate
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign)) // block align
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)      // bits per sample

	// data sub-chunk
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	for i, s := range b {
		binary.LittleEndian.PutUint16(buf[44+i*2:46+i*2], uint16(s))
	}

	return buf
}

// padded returns the buffer extended with trailing silence up to [MinSamples].
// Buffers already long enough are returned unchanged.
func (b Buffer) padded() Buffer {
	if len(b) >= MinSamples {
		return b
	}
	out := make(Buffer, MinSamples)
	copy(out, b)
	return out
}
