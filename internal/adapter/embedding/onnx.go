package embedding

import (
	"fmt"

	"github.com/nfnt/resize"
	ort "github.com/yalue/onnxruntime_go"

	"frameset/internal/domain"
)

// CLIP-style preprocessing constants.
var (
	clipMean = [3]float32{0.48145466, 0.4578275, 0.40821073}
	clipStd  = [3]float32{0.26862954, 0.26130258, 0.27577711}
)

// ONNXEmbedder runs a local vision-encoder ONNX model (a CLIP image
// tower) with onnxruntime. Inference may run on an accelerator; from
// the pipeline's view Embed is a blocking call.
type ONNXEmbedder struct {
	session   *ort.DynamicAdvancedSession
	model     string
	dimension int
	inputSize int
}

// NewONNXEmbedder loads the model at modelPath. libraryPath points at
// the onnxruntime shared library; empty means the default search path.
func NewONNXEmbedder(modelPath, libraryPath string, dimension, inputSize int) (*ONNXEmbedder, error) {
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer opts.Destroy()

	if err := opts.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll); err != nil {
		return nil, fmt.Errorf("failed to set graph optimization: %w", err)
	}
	if err := opts.SetIntraOpNumThreads(0); err != nil {
		return nil, fmt.Errorf("failed to set thread count: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{"pixel_values"},
		[]string{"image_embeds"},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &ONNXEmbedder{
		session:   session,
		model:     modelPath,
		dimension: dimension,
		inputSize: inputSize,
	}, nil
}

func (e *ONNXEmbedder) Embed(frames []*domain.Frame) ([][]float32, error) {
	if len(frames) == 0 {
		return nil, nil
	}

	batch := len(frames)
	size := e.inputSize
	pixels := make([]float32, batch*3*size*size)
	for i, f := range frames {
		e.preprocess(f, pixels[i*3*size*size:(i+1)*3*size*size])
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(int64(batch), 3, int64(size), int64(size)), pixels)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputs := make([]ort.Value, 1)
	if err := e.session.Run([]ort.Value{inputTensor}, outputs); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	defer outputs[0].Destroy()

	outputTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("output tensor is not float32 type")
	}

	shape := outputTensor.GetShape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("unexpected output rank %d", len(shape))
	}
	dim := int(shape[1])
	if dim != e.dimension {
		return nil, &domain.ShapeError{Want: e.dimension, Got: dim}
	}

	// Copy rows out before the output tensor is destroyed.
	data := outputTensor.GetData()
	embeddings := make([][]float32, batch)
	for i := 0; i < batch; i++ {
		embeddings[i] = make([]float32, dim)
		copy(embeddings[i], data[i*dim:(i+1)*dim])
	}

	return embeddings, nil
}

// preprocess resizes a frame to the model input resolution and writes
// normalized NCHW float32 pixels into dst.
func (e *ONNXEmbedder) preprocess(f *domain.Frame, dst []float32) {
	size := e.inputSize
	img := resize.Resize(uint(size), uint(size), f.Image(), resize.Bilinear)

	plane := size * size
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			i := y*size + x
			dst[0*plane+i] = (float32(r>>8)/255 - clipMean[0]) / clipStd[0]
			dst[1*plane+i] = (float32(g>>8)/255 - clipMean[1]) / clipStd[1]
			dst[2*plane+i] = (float32(b>>8)/255 - clipMean[2]) / clipStd[2]
		}
	}
}

func (e *ONNXEmbedder) Dimension() int {
	return e.dimension
}

func (e *ONNXEmbedder) ModelName() string {
	return e.model
}

// Close releases the session and the ONNX runtime environment.
func (e *ONNXEmbedder) Close() error {
	if e.session != nil {
		e.session.Destroy()
	}
	ort.DestroyEnvironment()
	return nil
}
