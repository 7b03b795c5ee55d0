// Package upscale defines the optional image upscaling step. Failure here
// always degrades to the original file, never to a lost item.
package upscale

import "context"

type Upscaler interface {
	// Upscale submits the local image and returns the path of the upscaled
	// replacement file. The input file is left untouched.
	Upscale(ctx context.Context, localPath string) (string, error)

	// Available reports whether the provider is configured.
	Available() bool
}
