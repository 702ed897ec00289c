package vision

import "errors"

var ErrDecode = errors.New("unsupported or corrupt image data")
var ErrModelNotLoaded = errors.New("model is not loaded")
