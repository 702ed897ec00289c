//go:build gocv
// +build gocv

package camera

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/AlfredoZC/DentiAI/internal/vision"
)

type gocvDevice struct {
	cap *gocv.VideoCapture
	mat gocv.Mat
}

// OpenDevice opens a local camera by index.
func OpenDevice(id int) (Device, error) {
	cap, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, ErrDeviceUnavailable
	}
	return &gocvDevice{cap: cap, mat: gocv.NewMat()}, nil
}

func (d *gocvDevice) ReadFrame() (image.Image, error) {
	if ok := d.cap.Read(&d.mat); !ok || d.mat.Empty() {
		return nil, ErrDeviceUnavailable
	}
	// OpenCV hands back packed BGR; normalize before anything else sees it.
	return vision.FromBGR(d.mat.ToBytes(), d.mat.Cols(), d.mat.Rows())
}

func (d *gocvDevice) Close() error {
	d.mat.Close()
	return d.cap.Close()
}
