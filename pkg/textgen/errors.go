package textgen

import "errors"

// ErrGeneration is returned when the text-generation service fails, whether
// from quota, network, timeout, or a malformed provider response.
var ErrGeneration = errors.New("text generation failed")
