package energy

import (
	"context"
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-energy/logging"
	"github.com/RyanBlaney/sonido-energy/transcode"
)

// ErrEmptyPrediction is returned when the model produces no output values.
var ErrEmptyPrediction = errors.New("model returned no output")

// Predictor runs the pretrained energy model on one input tensor. The model
// runtime and weights live outside this module.
type Predictor interface {
	Predict(ctx context.Context, input *Tensor) ([]float32, error)
}

// PredictorFunc adapts a function to the Predictor interface.
type PredictorFunc func(ctx context.Context, input *Tensor) ([]float32, error)

// Predict calls f(ctx, input).
func (f PredictorFunc) Predict(ctx context.Context, input *Tensor) ([]float32, error) {
	return f(ctx, input)
}

// Prediction is the energy estimate for one signal.
type Prediction struct {
	Energy  float64   `json:"energy"`  // first model output
	Outputs []float32 `json:"outputs"` // raw model output
	Result  *Result   `json:"result"`
}

// Analyzer couples feature extraction with an energy model.
type Analyzer struct {
	extractor *Extractor
	predictor Predictor
	logger    logging.Logger
}

// NewAnalyzer creates an analyzer. Both arguments are required.
func NewAnalyzer(extractor *Extractor, predictor Predictor) (*Analyzer, error) {
	if extractor == nil {
		return nil, errors.New("extractor cannot be nil")
	}
	if predictor == nil {
		return nil, errors.New("predictor cannot be nil")
	}
	return &Analyzer{
		extractor: extractor,
		predictor: predictor,
		logger: logging.WithFields(logging.Fields{
			"component": "energy_analyzer",
		}),
	}, nil
}

// PredictEnergy extracts features from audio and runs the model. A single
// analysis either completes or fails; there are no retries.
func (a *Analyzer) PredictEnergy(ctx context.Context, audio *transcode.AudioData) (*Prediction, error) {
	logger := a.logger.WithContext(ctx).WithFields(logging.Fields{
		"function": "PredictEnergy",
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := a.extractor.Extract(audio)
	if err != nil {
		return nil, fmt.Errorf("feature extraction failed: %w", err)
	}

	input, err := a.extractor.Tensor(result.Features)
	if err != nil {
		return nil, err
	}

	logger.Debug("Running energy model", logging.Fields{
		"shape": input.Shape,
	})

	outputs, err := a.predictor.Predict(ctx, input)
	if err != nil {
		logger.Error(err, "Energy model failed")
		return nil, fmt.Errorf("energy prediction failed: %w", err)
	}
	if len(outputs) == 0 {
		return nil, ErrEmptyPrediction
	}

	logger.Info("Energy predicted", logging.Fields{
		"energy": outputs[0],
		"frames": result.FrameCount,
	})

	return &Prediction{
		Energy:  float64(outputs[0]),
		Outputs: outputs,
		Result:  result,
	}, nil
}
