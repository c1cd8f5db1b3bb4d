package frameloop

import (
	"github.com/tphakala/frameloop-go/internal/errors"
)

// Sentinel errors for engine construction and control operations.
var (
	// ErrNilSampler is returned when an engine is created without an
	// upstream sampler.
	ErrNilSampler = errors.Newf("frameloop: sampler is required").
			Component("frameloop").
			Category(errors.CategoryValidation).
			Context("operation", "new_engine").
			Build()

	// ErrNilRenderer is returned when an engine is created without a
	// renderer.
	ErrNilRenderer = errors.Newf("frameloop: renderer is required").
			Component("frameloop").
			Category(errors.CategoryValidation).
			Context("operation", "new_engine").
			Build()

	// ErrEmptyBuffer signals a refused playback transition on an empty
	// store. Toggle reports this condition as a boolean; the sentinel
	// exists for API layers that want an error value.
	ErrEmptyBuffer = errors.Newf("frameloop: nothing to play, buffer is empty").
			Component("frameloop").
			Category(errors.CategoryState).
			Context("operation", "toggle").
			Build()
)
