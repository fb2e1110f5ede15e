package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

// Capture owns the default microphone device for the duration of one
// recording. Start opens the device and begins accumulating samples on a
// dedicated goroutine; Stop closes the device and hands the accumulated
// [Buffer] to the caller. The Capture may be reused for multiple sequential
// recordings, but at most one may be in progress at a time.
type Capture struct {
	mu      sync.Mutex
	stream  *portaudio.Stream
	frame   []int16
	samples Buffer
	running bool
	done    chan struct{}
}

// NewCapture initialises the audio subsystem and returns a Capture ready for
// use. The caller must call Close to release the subsystem when done.
func NewCapture() (*Capture, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audio: initialise portaudio: %w", err)
	}
	return &Capture{
		frame: make([]int16, FramesPerBuffer),
	}, nil
}

// Start opens the default input device at the fixed 16 kHz mono format and
// begins recording. Calling Start while a recording is already in progress
// is a no-op.
func (c *Capture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	// Preallocate for a typical take; grows past 30 s if needed.
	c.samples = make(Buffer, 0, SampleRate*30)
	c.done = make(chan struct{})

	stream, err := portaudio.OpenDefaultStream(Channels, 0, SampleRate, FramesPerBuffer, c.frame)
	if err != nil {
		return fmt.Errorf("audio: open input device: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("audio: start input stream: %w", err)
	}

	c.stream = stream
	c.running = true
	go c.readLoop()

	return nil
}

// readLoop drains the device into the sample buffer until Stop flips the
// running flag. It polls rather than blocking in Read so that Stop never
// waits on a device call.
func (c *Capture) readLoop() {
	defer close(c.done)

	for {
		c.mu.Lock()
		running, stream := c.running, c.stream
		c.mu.Unlock()
		if !running || stream == nil {
			return
		}

		available, err := stream.AvailableToRead()
		if err != nil || available < FramesPerBuffer {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if err := stream.Read(); err != nil {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		c.mu.Lock()
		if c.running {
			c.samples = append(c.samples, c.frame...)
		}
		c.mu.Unlock()
	}
}

// Stop ends the recording and returns everything captured since Start,
// padded with trailing silence when the take is shorter than the recognizer
// minimum. Ownership of the returned Buffer transfers to the caller; the
// Capture retains no reference to it. Calling Stop when no recording is in
// progress returns nil.
func (c *Capture) Stop() Buffer {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	stream := c.stream
	c.stream = nil
	samples := c.samples
	c.samples = nil
	done := c.done
	c.mu.Unlock()

	// Join the read loop before touching the stream. The loop re-checks
	// running every 10 ms and only calls Read when a full frame is already
	// available, so the wait is short and the loop can never see a closed
	// stream.
	<-done

	if stream != nil {
		stream.Stop()
		stream.Close()
	}

	return samples.padded()
}

// Active reports whether a recording is in progress.
func (c *Capture) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Close stops any in-progress recording and releases the audio subsystem.
func (c *Capture) Close() error {
	c.Stop()
	return portaudio.Terminate()
}
