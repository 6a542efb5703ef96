package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dkempner/noiselab/internal/driver"
	"github.com/dkempner/noiselab/internal/logger"
	"github.com/dkempner/noiselab/internal/model"
	"github.com/dkempner/noiselab/internal/template"
	"github.com/dkempner/noiselab/internal/tokenizer"
	"github.com/dkempner/noiselab/internal/toy"
)

func newLogger() logger.Logger {
	level := logger.ParseLevel(logLevel)
	if debug {
		level = logger.ParseLevel("debug")
	}
	switch logFormat {
	case "json":
		return logger.JSON(os.Stderr, level)
	case "text":
		return logger.Default()
	default:
		return logger.Pretty(os.Stderr, level)
	}
}

func provider() (model.Provider, error) {
	switch engineName {
	case "", "toy":
		return toy.Provider{}, nil
	default:
		return nil, fmt.Errorf("unknown engine %q", engineName)
	}
}

func modelConfig() model.Config {
	tokPath := tokenizerPath
	if tokPath == "" {
		tokPath = modelPath
	}
	return model.Config{
		ModelPath:     modelPath,
		TokenizerPath: tokPath,
		Template:      templateName,
		Devices:       model.DeviceConfig{Visible: devices},
		AccessToken:   accessToken,
		Precision:     model.Precision(precision),
	}
}

// buildDriver loads the engine behind the flags and wraps it in a driver.
// More than one --device loads one replica per device behind a
// data-parallel facade.
func buildDriver(ctx context.Context, log logger.Logger) (*driver.Driver, error) {
	p, err := provider()
	if err != nil {
		return nil, err
	}
	cfg := modelConfig()

	m, codec, err := p.Load(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	if len(cfg.Devices.Visible) > 1 {
		replicas := []model.Model{m}
		for range cfg.Devices.Visible[1:] {
			rm, _, err := p.Load(ctx, cfg)
			if err != nil {
				return nil, fmt.Errorf("load replica: %w", err)
			}
			replicas = append(replicas, rm)
		}
		dp, err := model.NewDataParallel(replicas)
		if err != nil {
			return nil, err
		}
		m = dp
	}

	adapter, err := tokenizer.NewAdapter(codec, cfg.TokenizerPath)
	if err != nil {
		return nil, err
	}
	return driver.New(m, adapter, driver.Options{Logger: log})
}

// renderPrompts applies the selected conversation template to each raw
// prompt.
func renderPrompts(raw []string) ([]string, error) {
	conv, err := template.Get(templateName)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(raw))
	for i, p := range raw {
		out[i] = conv.Prompt(p)
	}
	return out, nil
}
