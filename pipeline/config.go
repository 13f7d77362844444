package pipeline

import (
	"fmt"
	"runtime"
)

// Config holds pipeline options.
type Config struct {
	// MaxImageDimension bounds the longest side of the image before
	// extraction. Larger images are downscaled preserving aspect ratio.
	// Zero disables rescaling.
	MaxImageDimension int

	// UseParallelExtraction extracts the descriptor kinds of one image
	// concurrently when more than one kind is requested.
	UseParallelExtraction bool

	// IgnoreMetadataErrors logs and skips metadata failures instead of
	// failing the document.
	IgnoreMetadataErrors bool

	// ExtractMetadata enables metadata extraction for fields that declare
	// metadata sub-fields.
	ExtractMetadata bool

	// MaxWorkers bounds concurrent extractions within one document.
	MaxWorkers int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxImageDimension:     1024,
		UseParallelExtraction: true,
		IgnoreMetadataErrors:  true,
		ExtractMetadata:       true,
		MaxWorkers:            runtime.GOMAXPROCS(0),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MaxImageDimension < 0 {
		return fmt.Errorf("pipeline: MaxImageDimension must be >= 0, got %d", c.MaxImageDimension)
	}
	if c.MaxWorkers < 0 {
		return fmt.Errorf("pipeline: MaxWorkers must be >= 0, got %d", c.MaxWorkers)
	}
	return nil
}
