package chef

import "fmt"

// GenerationError marks a total failure of a text or structured call: empty
// response, non-conformant JSON, or a transport failure. Callers must leave
// any previously displayed plan untouched.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// AudioError marks a speech request that produced no usable audio payload.
type AudioError struct {
	Err error
}

func (e *AudioError) Error() string {
	return fmt.Sprintf("speech synthesis failed: %v", e.Err)
}

func (e *AudioError) Unwrap() error { return e.Err }

// ImageError marks an illustration request that produced no image payload.
type ImageError struct {
	Err error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("image generation failed: %v", e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }
