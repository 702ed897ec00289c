package camera

import (
	"context"
	"errors"
	"image"
	"log"
	"sync"
	"time"

	"github.com/AlfredoZC/DentiAI/internal/vision"
)

var ErrDeviceUnavailable = errors.New("camera device unavailable")
var ErrInactive = errors.New("camera is not active")

// Device is a scoped camera handle. ReadFrame returns an RGB-normalized
// frame; Close releases the underlying device.
type Device interface {
	ReadFrame() (image.Image, error)
	Close() error
}

// Capture owns a device and runs the preview poll loop. The mutex covers
// every device read, so the loop and TakePhoto never touch the handle
// concurrently, and Stop releases it exactly once on any exit path.
type Capture struct {
	dev      Device
	mu       sync.Mutex
	frames   chan []byte
	stop     chan struct{}
	stopOnce sync.Once
	interval time.Duration
}

func New(dev Device) *Capture {
	return &Capture{
		dev:      dev,
		frames:   make(chan []byte, 1),
		stop:     make(chan struct{}),
		interval: 50 * time.Millisecond,
	}
}

// Frames is the live preview stream: display-normalized JPEG frames.
func (c *Capture) Frames() <-chan []byte {
	return c.frames
}

// Run polls the device until Stop is called or ctx is cancelled. A failed
// read leaves the preview unchanged; the device is always released on exit.
func (c *Capture) Run(ctx context.Context) {
	defer c.Stop()
	defer close(c.frames) // Run is the only sender; consumers unblock on exit

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case <-ticker.C:
			frame, err := c.readPreview()
			if err != nil {
				continue
			}
			select {
			case c.frames <- frame:
			default: // consumer is behind, drop the frame
			}
		}
	}
}

func (c *Capture) readPreview() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.stop:
		return nil, ErrInactive
	default:
	}

	img, err := c.dev.ReadFrame()
	if err != nil {
		return nil, err
	}
	return vision.EncodeJPEG(vision.DisplaySize(img))
}

// TakePhoto grabs one full-resolution frame for diagnosis. It shares the
// device mutex with the preview loop.
func (c *Capture) TakePhoto() (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.stop:
		return nil, ErrInactive
	default:
	}
	return c.dev.ReadFrame()
}

// Stop deactivates the loop and releases the device. Safe to call from any
// goroutine and any number of times; the release happens once.
func (c *Capture) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
		c.mu.Lock()
		defer c.mu.Unlock()
		if err := c.dev.Close(); err != nil {
			log.Printf("camera: releasing device: %v", err)
		}
	})
}
