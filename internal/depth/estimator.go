// Package depth wraps the monocular depth estimation model and the
// normalized depth map it produces.
package depth

import (
	"context"
	"image"
)

// Estimator produces a relative depth map for a single image. Estimation
// is assumed deterministic for a given input; a failure is fatal to the
// pipeline and is never retried.
type Estimator interface {
	// Estimate runs the model once and returns the raw (unnormalized)
	// depth map at the model's native resolution.
	Estimate(ctx context.Context, img image.Image) (*Map, error)
	Close() error
}
