package model

import (
	"fmt"
	"strings"
)

// Precision selects the floating-point width the provider should load
// weights in.
type Precision string

const (
	// PrecisionAuto resolves from the model name: vicuna models are
	// numerically unstable in half precision and force F32, everything
	// else defaults to F16.
	PrecisionAuto Precision = ""
	PrecisionF16  Precision = "f16"
	PrecisionF32  Precision = "f32"
)

// ResolvePrecision applies the auto rule against the model path.
func ResolvePrecision(modelPath string, p Precision) Precision {
	if p != PrecisionAuto {
		return p
	}
	if strings.Contains(strings.ToLower(modelPath), "vicuna") {
		return PrecisionF32
	}
	return PrecisionF16
}

// DeviceConfig pins the compute devices a driver instance may use. It is
// passed explicitly at construction so two drivers in one process cannot
// interfere through shared global device state.
type DeviceConfig struct {
	// Visible lists the device identifiers available to this instance,
	// e.g. ["cuda:0", "cuda:1"]. Empty means a single default device.
	Visible []string
}

// Primary returns the device the non-replicated paths run on.
func (d DeviceConfig) Primary() string {
	if len(d.Visible) == 0 {
		return "cpu"
	}
	return d.Visible[0]
}

// Config carries the construction-time inputs for loading a model and
// tokenizer pair.
type Config struct {
	ModelPath     string
	TokenizerPath string
	Template      string
	Devices       DeviceConfig

	// AccessToken authenticates against gated model repositories.
	AccessToken string

	Precision Precision
}

// Validate checks the required fields.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ModelPath) == "" {
		return fmt.Errorf("model: model path is required")
	}
	if strings.TrimSpace(c.TokenizerPath) == "" {
		return fmt.Errorf("model: tokenizer path is required")
	}
	return nil
}
