// Package config resolves the run configuration: the JSON options object
// passed on the command line, environment overrides for deployment knobs,
// and the two positional paths.
package config

import (
	"encoding/json"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Options is the user-facing option object, passed as a JSON string in
// the third positional argument. Unset fields take the documented
// defaults.
type Options struct {
	// Direction of the pan: left, right, up, down, or none (zoom only).
	Direction string `json:"direction"`
	// Intensity scales pan speeds and zoom delta: subtle, normal, dramatic.
	Intensity string `json:"intensity"`
	// Duration of the clip in seconds.
	Duration float64 `json:"duration"`
	// FPS is the output frame rate.
	FPS int `json:"fps"`
	// LayerCount is reserved for the multi-layer mode; the production
	// pipeline always uses the two-layer split.
	LayerCount int `json:"layerCount"`
	// Zoom mode: none, in, or out.
	Zoom string `json:"zoom"`
	// ScheduleOutput, when set, dumps the computed motion schedule to
	// this path as YAML before rendering.
	ScheduleOutput string `json:"scheduleOutput"`
}

// DefaultOptions mirrors the documented defaults.
func DefaultOptions() Options {
	return Options{
		Direction:  "right",
		Intensity:  "normal",
		Duration:   5.0,
		FPS:        24,
		LayerCount: 3,
		Zoom:       "none",
	}
}

// DecodeOptions parses the JSON option string over the defaults. A
// malformed document is a fatal input error.
func DecodeOptions(raw string) (Options, error) {
	opts := DefaultOptions()
	if raw == "" {
		return opts, nil
	}
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return opts, errors.Wrap(err, "decoding options JSON")
	}
	return opts, nil
}

// Env carries the deployment knobs that never belong in the per-call
// option object. All variables are prefixed PARALLAX_.
type Env struct {
	// ModelPath is the Depth Anything V2 ONNX export.
	ModelPath string `envconfig:"MODEL_PATH" default:"models/depth_anything_v2_small.onnx"`
	// ORTLibraryPath is the onnxruntime shared library; empty defers to
	// ONNXRUNTIME_SHARED_LIBRARY_PATH.
	ORTLibraryPath string `envconfig:"ORT_LIBRARY_PATH"`
	// FFmpegBin is the encoder binary to invoke.
	FFmpegBin string `envconfig:"FFMPEG_BIN" default:"ffmpeg"`
	// LogLevel is a logrus level name.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// TempRoot hosts the per-run frame directory; empty uses the
	// system default.
	TempRoot string `envconfig:"TEMP_ROOT"`
}

// LoadEnv reads the PARALLAX_* environment.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process("parallax", &env); err != nil {
		return env, errors.Wrap(err, "reading environment")
	}
	return env, nil
}

// Config is the fully resolved configuration for one run.
type Config struct {
	InputPath  string
	OutputPath string
	Options    Options
	Env        Env
}
