package depth

import (
	"context"
	"image"
	"image/color"
	"os"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/image/draw"
)

// ONNXOptions configures the ONNX Runtime session that hosts the depth
// model. The defaults match the Depth Anything V2 small export.
type ONNXOptions struct {
	// ModelPath points at the .onnx file on disk.
	ModelPath string

	// SharedLibraryPath points at the onnxruntime shared library
	// (.so/.dylib/.dll). If empty, the ONNXRUNTIME_SHARED_LIBRARY_PATH
	// environment variable is respected.
	SharedLibraryPath string

	// Input and output tensor names in the model graph.
	InputName  string
	OutputName string

	// Model input resolution. The image is resampled to this size before
	// inference; the returned map has the same resolution.
	InputWidth  int
	InputHeight int

	// Per-channel normalization applied after scaling pixels to [0,1].
	MeanRGB   [3]float32
	StddevRGB [3]float32
}

// DefaultONNXOptions returns the Depth Anything V2 preprocessing contract:
// 518×518 RGB input, ImageNet mean/std normalization, NCHW layout.
func DefaultONNXOptions(modelPath string) ONNXOptions {
	return ONNXOptions{
		ModelPath:   modelPath,
		InputName:   "image",
		OutputName:  "depth",
		InputWidth:  518,
		InputHeight: 518,
		MeanRGB:     [3]float32{0.485, 0.456, 0.406},
		StddevRGB:   [3]float32{0.229, 0.224, 0.225},
	}
}

// ONNXEstimator runs a monocular depth model through ONNX Runtime.
// The session is created once and reused for every Estimate call; the
// model is read-only after load, so a single estimator may serve the
// whole process lifetime.
type ONNXEstimator struct {
	opts    ONNXOptions
	session *ort.DynamicAdvancedSession
}

// NewONNXEstimator initializes the runtime environment and loads the
// model. The caller owns the estimator and must Close it.
func NewONNXEstimator(opts ONNXOptions) (*ONNXEstimator, error) {
	if opts.InputWidth <= 0 || opts.InputHeight <= 0 {
		return nil, errors.Errorf("invalid model input size %dx%d", opts.InputWidth, opts.InputHeight)
	}
	if _, err := os.Stat(opts.ModelPath); err != nil {
		return nil, errors.Wrap(err, "depth model not found")
	}

	if opts.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(opts.SharedLibraryPath)
	} else if p := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); p != "" {
		ort.SetSharedLibraryPath(p)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, errors.Wrap(err, "initializing onnxruntime")
	}

	session, err := ort.NewDynamicAdvancedSession(
		opts.ModelPath,
		[]string{opts.InputName},
		[]string{opts.OutputName},
		nil,
	)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, errors.Wrap(err, "loading depth model")
	}

	return &ONNXEstimator{opts: opts, session: session}, nil
}

// Estimate preprocesses img to the model's input tensor, runs one
// inference pass and converts the [1,H,W] output tensor to a Map.
func (e *ONNXEstimator) Estimate(ctx context.Context, img image.Image) (*Map, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	input, err := e.imageTensor(img)
	if err != nil {
		return nil, err
	}
	defer input.Destroy()

	outShape := ort.NewShape(1, int64(e.opts.InputHeight), int64(e.opts.InputWidth))
	output, err := ort.NewEmptyTensor[float32](outShape)
	if err != nil {
		return nil, errors.Wrap(err, "allocating output tensor")
	}
	defer output.Destroy()

	if err := e.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return nil, errors.Wrap(err, "running depth model")
	}

	data := output.GetData()
	m := NewMap(e.opts.InputWidth, e.opts.InputHeight)
	if len(data) != len(m.Pix) {
		return nil, errors.Errorf("unexpected depth output size %d, want %d", len(data), len(m.Pix))
	}
	for i, v := range data {
		m.Pix[i] = float64(v)
	}
	return m, nil
}

// Close releases the session and the runtime environment.
func (e *ONNXEstimator) Close() error {
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	return ort.DestroyEnvironment()
}

// imageTensor flattens transparency over white, resamples to the model
// resolution and packs the pixels as a normalized NCHW float32 tensor.
func (e *ONNXEstimator) imageTensor(img image.Image) (*ort.Tensor[float32], error) {
	b := img.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(flat, flat.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Over)

	w, h := e.opts.InputWidth, e.opts.InputHeight
	scaled := resize.Resize(uint(w), uint(h), flat, resize.Bicubic)

	rgba, ok := scaled.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(rgba, rgba.Bounds(), scaled, scaled.Bounds().Min, draw.Src)
	}

	data := make([]float32, 3*w*h)
	plane := w * h
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := y*rgba.Stride + x*4
			for c := 0; c < 3; c++ {
				v := float32(rgba.Pix[off+c]) / 255.0
				data[c*plane+y*w+x] = (v - e.opts.MeanRGB[c]) / e.opts.StddevRGB[c]
			}
		}
	}

	shape := ort.NewShape(1, 3, int64(h), int64(w))
	tensor, err := ort.NewTensor(shape, data)
	if err != nil {
		return nil, errors.Wrap(err, "creating input tensor")
	}
	return tensor, nil
}
