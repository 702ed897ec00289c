//go:build !gocv
// +build !gocv

package camera

import "fmt"

// OpenDevice reports the missing build tag when compiled without OpenCV.
func OpenDevice(id int) (Device, error) {
	return nil, fmt.Errorf("%w: built without the gocv build tag", ErrDeviceUnavailable)
}
