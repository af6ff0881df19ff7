package htspack

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/ieee0824/htspack/feature"
)

// StreamConfig describes one feature stream, e.g. mel-cepstrum or log-F0.
type StreamConfig struct {
	Name    string           // label used in logs and batch layouts
	Order   int              // static order; frames hold Order+1 values
	Windows []feature.Window // applied in order, one output block each
	MSD     bool             // propagate missing values through the windows
}

// Dim returns the number of static values per input frame.
func (c StreamConfig) Dim() int { return c.Order + 1 }

// AugmentedDim returns the number of values per output frame.
func (c StreamConfig) AugmentedDim() int { return c.Dim() * len(c.Windows) }

// Validate checks the order and the windows.
func (c StreamConfig) Validate() error {
	if c.Order < 0 {
		return errors.Errorf("negative order %d", c.Order)
	}
	if len(c.Windows) == 0 {
		return errors.New("no windows")
	}
	for i, w := range c.Windows {
		if err := w.Validate(); err != nil {
			return errors.Wrapf(err, "window %d", i)
		}
	}
	return nil
}

func (c StreamConfig) label(i int) string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("stream%d", i)
}
