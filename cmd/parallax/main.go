// Command parallax turns a single photograph into a short 2.5-D parallax
// video: depth-based foreground/background separation, an inpainted
// pannable background, and an eased pan/zoom schedule encoded to MP4.
//
// Usage:
//
//	parallax <input-image> <output-video> [options-json]
//
// The optional third argument is a JSON object, e.g.
// {"direction":"left","intensity":"dramatic","duration":3,"zoom":"in"}.
// Exactly one JSON line is printed to stdout when the run finishes:
// {"success":true,"output":...} or {"success":false,"error":...} with a
// non-zero exit code. All progress logging goes to stderr.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ivlev/parallax/internal/config"
	"github.com/ivlev/parallax/internal/depth"
	"github.com/ivlev/parallax/internal/engine"
	"github.com/ivlev/parallax/internal/source"
	"github.com/ivlev/parallax/internal/system"
	"github.com/ivlev/parallax/internal/video"
)

// result is the single structured line written to stdout.
type result struct {
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <input-image> <output-video> [options-json]\n", os.Args[0])
		os.Exit(2)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	output, err := run(logger)
	if err != nil {
		emit(result{Success: false, Error: err.Error()})
		os.Exit(1)
	}
	emit(result{Success: true, Output: output})
}

func run(logger *logrus.Logger) (string, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return "", err
	}
	if level, err := logrus.ParseLevel(env.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	optionsJSON := ""
	if len(os.Args) > 3 {
		optionsJSON = os.Args[3]
	}
	opts, err := config.DecodeOptions(optionsJSON)
	if err != nil {
		return "", err
	}

	cfg := &config.Config{
		InputPath:  os.Args[1],
		OutputPath: os.Args[2],
		Options:    opts,
		Env:        env,
	}

	system.InitResourceLimits(logger)
	system.LogHostInfo(logger)

	ctx := context.Background()

	encoder := &video.FFmpegEncoder{Binary: env.FFmpegBin}
	if err := encoder.Probe(ctx); err != nil {
		return "", err
	}

	src, err := source.Open(cfg.InputPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	logger.WithField("model", env.ModelPath).Info("loading depth model")
	estOpts := depth.DefaultONNXOptions(env.ModelPath)
	estOpts.SharedLibraryPath = env.ORTLibraryPath
	estimator, err := depth.NewONNXEstimator(estOpts)
	if err != nil {
		return "", err
	}
	defer estimator.Close()

	project := engine.NewProject(cfg, src, estimator, encoder, logger)
	return project.Run(ctx)
}

func emit(r result) {
	line, err := json.Marshal(r)
	if err != nil {
		// Marshaling a flat struct of strings cannot realistically fail;
		// keep the contract of one line on stdout anyway.
		fmt.Println(`{"success":false,"error":"internal: result encoding failed"}`)
		return
	}
	fmt.Println(string(line))
}
