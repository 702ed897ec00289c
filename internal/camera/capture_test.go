package camera

import (
	"context"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	mu         sync.Mutex
	readDelay  time.Duration
	readErr    error
	closeCount atomic.Int32
}

func (d *fakeDevice) ReadFrame() (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.readDelay > 0 {
		time.Sleep(d.readDelay)
	}
	if d.readErr != nil {
		return nil, d.readErr
	}
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 50, G: 60, B: 70, A: 255})
		}
	}
	return img, nil
}

func (d *fakeDevice) Close() error {
	d.closeCount.Add(1)
	return nil
}

func TestCaptureStreamsPreviewFrames(t *testing.T) {
	dev := &fakeDevice{}
	capture := New(dev)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go capture.Run(ctx)
	defer capture.Stop()

	select {
	case frame := <-capture.Frames():
		require.NotEmpty(t, frame)
		// Frames are display-normalized JPEG.
		require.Equal(t, byte(0xff), frame[0])
		require.Equal(t, byte(0xd8), frame[1])
	case <-time.After(2 * time.Second):
		t.Fatal("no preview frame within deadline")
	}
}

func TestTakePhotoWhileLoopRuns(t *testing.T) {
	dev := &fakeDevice{}
	capture := New(dev)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go capture.Run(ctx)
	defer capture.Stop()

	img, err := capture.TakePhoto()
	require.NoError(t, err)
	require.Equal(t, 8, img.Bounds().Dx())
}

func TestStopReleasesDeviceExactlyOnce(t *testing.T) {
	dev := &fakeDevice{}
	capture := New(dev)

	done := make(chan struct{})
	go func() {
		capture.Run(context.Background())
		close(done)
	}()

	// Concurrent stops plus the loop's own deferred stop on exit.
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			capture.Stop()
		}()
	}
	wg.Wait()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit after Stop")
	}
	require.Equal(t, int32(1), dev.closeCount.Load())
}

func TestStopDuringInFlightReadStillReleasesOnce(t *testing.T) {
	dev := &fakeDevice{readDelay: 50 * time.Millisecond}
	capture := New(dev)

	readStarted := make(chan struct{})
	go func() {
		close(readStarted)
		_, _ = capture.TakePhoto()
	}()

	<-readStarted
	time.Sleep(10 * time.Millisecond) // let TakePhoto grab the device mutex
	capture.Stop()

	require.Equal(t, int32(1), dev.closeCount.Load())
}

func TestTakePhotoAfterStop(t *testing.T) {
	dev := &fakeDevice{}
	capture := New(dev)
	capture.Stop()

	_, err := capture.TakePhoto()
	require.ErrorIs(t, err, ErrInactive)
}

func TestRunExitsOnContextCancel(t *testing.T) {
	dev := &fakeDevice{}
	capture := New(dev)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		capture.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit on context cancel")
	}
	require.Equal(t, int32(1), dev.closeCount.Load())
}

var _ Device = (*fakeDevice)(nil)
