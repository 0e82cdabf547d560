// Package config provides configuration structures for the LSH search engine.
// It defines per-index shingle/signature/band settings and the application config.
package config

import (
	"fmt"

	"github.com/gcbaptista/go-lsh-search/internal/errors"
)

// Default index parameters.
const (
	DefaultShingleSize     = 3
	DefaultSignatureLength = 10
	DefaultBandWidth       = 2
	DefaultTopN            = 10
)

// IndexSettings contains all configuration options for an LSH index.
//
// SignatureLength (K) must be a positive multiple of BandWidth (W); the index
// holds K/W band-slot tables. Settings are fixed for the lifetime of a built
// index: changing them means rebuilding.
type IndexSettings struct {
	Name            string `json:"name" mapstructure:"name" yaml:"name,omitempty"`
	ShingleSize     int    `json:"shingle_size" mapstructure:"shingle_size" yaml:"shingle_size"`             // S: characters per shingle
	SignatureLength int    `json:"signature_length" mapstructure:"signature_length" yaml:"signature_length"` // K: smallest hashes kept per document
	BandWidth       int    `json:"band_width" mapstructure:"band_width" yaml:"band_width"`                   // W: signature values per band
	TopN            int    `json:"top_n" mapstructure:"top_n" yaml:"top_n"`                                  // N: default result count, 0 allowed
	MaxCandidates   int    `json:"max_candidates,omitempty" mapstructure:"max_candidates" yaml:"max_candidates"` // 0 = unlimited
}

// NumBands returns the number of band-slots (K/W). Only meaningful on valid settings.
func (settings *IndexSettings) NumBands() int {
	if settings.BandWidth <= 0 {
		return 0
	}
	return settings.SignatureLength / settings.BandWidth
}

// ApplyDefaults fills zero-valued parameters with the defaults.
// Negative values are left alone so Validate can reject them.
func (settings *IndexSettings) ApplyDefaults() {
	if settings.ShingleSize == 0 {
		settings.ShingleSize = DefaultShingleSize
	}
	if settings.SignatureLength == 0 {
		settings.SignatureLength = DefaultSignatureLength
	}
	if settings.BandWidth == 0 {
		settings.BandWidth = DefaultBandWidth
	}
}

// Validate checks the (S, K, W, N) combination. It returns a *errors.ConfigError
// describing the first problem found, or nil.
func (settings *IndexSettings) Validate() error {
	if settings.ShingleSize <= 0 {
		return errors.NewConfigError("shingle_size", fmt.Sprintf("must be > 0, got %d", settings.ShingleSize))
	}
	if settings.SignatureLength <= 0 {
		return errors.NewConfigError("signature_length", fmt.Sprintf("must be > 0, got %d", settings.SignatureLength))
	}
	if settings.BandWidth <= 0 {
		return errors.NewConfigError("band_width", fmt.Sprintf("must be > 0, got %d", settings.BandWidth))
	}
	if settings.SignatureLength%settings.BandWidth != 0 {
		return errors.NewConfigError("band_width", fmt.Sprintf("signature_length %d is not a multiple of band_width %d",
			settings.SignatureLength, settings.BandWidth))
	}
	if settings.TopN < 0 {
		return errors.NewConfigError("top_n", fmt.Sprintf("must be >= 0, got %d", settings.TopN))
	}
	if settings.MaxCandidates < 0 {
		return errors.NewConfigError("max_candidates", fmt.Sprintf("must be >= 0, got %d", settings.MaxCandidates))
	}
	return nil
}
