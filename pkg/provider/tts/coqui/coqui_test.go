package coqui

import (
	"encoding/binary"
	"testing"
)

// buildWAV assembles a minimal RIFF/WAV file for decoder tests.
func buildWAV(t *testing.T, samples []int16, rate, channels int) []byte {
	t.Helper()

	dataSize := len(samples) * 2
	buf := make([]byte, 44+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1)
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(rate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(rate*channels*2))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(channels*2))
	binary.LittleEndian.PutUint16(buf[34:36], 16)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[44+i*2:46+i*2], uint16(s))
	}
	return buf
}

func TestDecodeWAV_Mono(t *testing.T) {
	t.Parallel()

	in := []int16{0, 1000, -1000, 32767}
	wav := buildWAV(t, in, 22050, 1)

	samples, rate, err := decodeWAV(wav)
	if err != nil {
		t.Fatalf("decodeWAV: %v", err)
	}
	if rate != 22050 {
		t.Errorf("rate = %d, want 22050", rate)
	}
	if len(samples) != len(in) {
		t.Fatalf("len(samples) = %d, want %d", len(samples), len(in))
	}
	for i := range in {
		if samples[i] != in[i] {
			t.Errorf("samples[%d] = %d, want %d", i, samples[i], in[i])
		}
	}
}

func TestDecodeWAV_StereoTakesFirstChannel(t *testing.T) {
	t.Parallel()

	// Interleaved stereo frames: (L=10, R=20), (L=30, R=40).
	wav := buildWAV(t, []int16{10, 20, 30, 40}, 16000, 2)

	samples, _, err := decodeWAV(wav)
	if err != nil {
		t.Fatalf("decodeWAV: %v", err)
	}
	if len(samples) != 2 || samples[0] != 10 || samples[1] != 30 {
		t.Errorf("samples = %v, want [10 30]", samples)
	}
}

func TestDecodeWAV_Rejects(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not riff", []byte("this is definitely not a wav file, not even close")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, _, err := decodeWAV(tc.data); err == nil {
				t.Error("decodeWAV accepted invalid input")
			}
		})
	}
}
