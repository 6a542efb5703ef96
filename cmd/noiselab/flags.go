package main

import "github.com/urfave/cli/v3"

var (
	modelPath     string
	tokenizerPath string
	templateName  string
	engineName    string
	precision     string
	devices       []string
	accessToken   string
	logLevel      string
	logFormat     string
	debug         bool
)

func commonModelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "model",
			Aliases:     []string{"m"},
			Usage:       "model path or identifier",
			Destination: &modelPath,
		},
		&cli.StringFlag{
			Name:        "tokenizer",
			Usage:       "tokenizer path (defaults to the model path)",
			Destination: &tokenizerPath,
		},
		&cli.StringFlag{
			Name:        "conv-template",
			Usage:       "conversation template (raw, vicuna_v1.1, llama-2)",
			Value:       "raw",
			Destination: &templateName,
		},
		&cli.StringFlag{
			Name:        "engine",
			Usage:       "inference engine (toy)",
			Value:       "toy",
			Destination: &engineName,
		},
		&cli.StringFlag{
			Name:        "precision",
			Usage:       "weight precision (auto, f16, f32)",
			Destination: &precision,
		},
		&cli.StringSliceFlag{
			Name:        "device",
			Aliases:     []string{"d"},
			Usage:       "compute device, repeatable for data parallelism (e.g. cuda:0)",
			Destination: &devices,
		},
		&cli.StringFlag{
			Name:        "access-token",
			Usage:       "access token for gated model repositories",
			Sources:     cli.EnvVars("NOISELAB_ACCESS_TOKEN"),
			Destination: &accessToken,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func windowFlags(start *int64, end *int64, scale *float64) []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "start",
			Usage:       "first token position to perturb (inclusive)",
			Destination: start,
		},
		&cli.Int64Flag{
			Name:        "end",
			Usage:       "token position the perturbation stops before (exclusive)",
			Destination: end,
		},
		&cli.Float64Flag{
			Name:        "scale",
			Usage:       "noise scale",
			Destination: scale,
		},
	}
}
