package optim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relic-ml/relic/internal/backend/cpu"
	"github.com/relic-ml/relic/internal/loadable"
	"github.com/relic-ml/relic/internal/nn"
	"github.com/relic-ml/relic/internal/tensor"
)

// TestAdam_FirstStep verifies the bias-corrected update against the
// formula.
func TestAdam_FirstStep(t *testing.T) {
	backend := cpu.New()
	p := singleParam(t, backend, 1.0)
	opt := NewAdam([]*nn.Parameter[B]{p}, AdamConfig{LR: 0.001}, backend)

	opt.Step(onesLike(t, []*nn.Parameter[B]{p}))

	// With g=1 and t=1: m_hat = v_hat = 1, so the update is
	// lr / (1 + eps) regardless of the betas.
	expected := 1.0 - 0.001/(1.0+1e-8)
	assert.InDelta(t, expected, float64(p.Tensor().Data()[0]), 1e-6)
	assert.Equal(t, int64(1), opt.Timestep())
}

// TestAdam_Defaults verifies default hyperparameter resolution.
func TestAdam_Defaults(t *testing.T) {
	backend := cpu.New()
	opt := NewAdam(nil, AdamConfig{}, backend)
	assert.InDelta(t, 0.001, opt.LR(), 1e-9)

	rec, err := loadable.Serialize(opt)
	require.NoError(t, err)

	kwargs := make(map[string]float64)
	for _, kw := range rec.Kwargs {
		kwargs[kw.Key] = kw.Value.Leaf.Float
	}
	assert.InDelta(t, 0.001, kwargs["lr"], 1e-6)
	assert.InDelta(t, 0.9, kwargs["beta1"], 1e-6)
	assert.InDelta(t, 0.999, kwargs["beta2"], 1e-6)
	assert.InDelta(t, 1e-8, kwargs["eps"], 1e-12)
}

// TestAdam_StateRoundTrip verifies moments and the timestep restore
// after SetParams, and that training resumes identically.
func TestAdam_StateRoundTrip(t *testing.T) {
	backend := cpu.New()
	model := nn.NewLinear(2, 2, backend)
	opt := NewAdam(model.Parameters(), AdamConfig{}, backend)

	grads := onesLike(t, model.Parameters())
	opt.Step(grads)
	opt.Step(grads)
	require.Equal(t, int64(2), opt.Timestep())

	rec, err := loadable.Serialize(opt)
	require.NoError(t, err)
	assert.Contains(t, rec.State, "step")
	assert.Contains(t, rec.State, "m.0")
	assert.Contains(t, rec.State, "v.0")

	node, err := loadable.Deserialize(rec, backend)
	require.NoError(t, err)
	restored := node.(*Adam[B])

	// Build a second model with identical weights so both optimizers
	// update the same numbers.
	clone := nn.NewLinear(2, 2, backend)
	require.NoError(t, clone.LoadStateDict(model.StateDict()))
	require.NoError(t, restored.SetParams(clone.Parameters()))
	assert.Equal(t, int64(2), restored.Timestep())

	opt.Step(grads)
	restored.Step(onesLike(t, clone.Parameters()))
	assert.Equal(t, int64(3), restored.Timestep())

	origW := model.Weight().Tensor().Data()
	cloneW := clone.Weight().Tensor().Data()
	assert.InDeltaSlice(t, origW, cloneW, 1e-6)
}

// TestAdam_StepTensor verifies the timestep is persisted as a single
// int64 state entry and validated on restore.
func TestAdam_StepTensor(t *testing.T) {
	backend := cpu.New()
	p := singleParam(t, backend, 1.0)
	opt := NewAdam([]*nn.Parameter[B]{p}, AdamConfig{}, backend)
	opt.Step(onesLike(t, []*nn.Parameter[B]{p}))

	state := opt.StateDict()
	stepRaw := state["step"]
	require.NotNil(t, stepRaw)
	assert.Equal(t, tensor.Int64, stepRaw.DType())
	assert.Equal(t, 1, stepRaw.NumElements())
	assert.Equal(t, int64(1), stepRaw.AsInt64()[0])

	fresh := NewAdam(nil, AdamConfig{}, backend)
	bad, err := tensor.NewRaw(tensor.Shape{2}, tensor.Float32)
	require.NoError(t, err)
	require.NoError(t, fresh.LoadStateDict(map[string]*tensor.RawTensor{"step": bad}))
	assert.ErrorContains(t, fresh.SetParams(nil), "single int64")
}

// TestAdam_BeforeFirstStep verifies no step entry exists at t=0.
func TestAdam_BeforeFirstStep(t *testing.T) {
	backend := cpu.New()
	opt := NewAdam(nil, AdamConfig{}, backend)
	assert.NotContains(t, opt.StateDict(), "step")
}

// TestAdam_ConvergesOnQuadratic runs a few iterations on f(x) = x² and
// checks the loss decreases.
func TestAdam_ConvergesOnQuadratic(t *testing.T) {
	backend := cpu.New()
	p := singleParam(t, backend, 5.0)
	opt := NewAdam([]*nn.Parameter[B]{p}, AdamConfig{LR: 0.5}, backend)

	initial := math.Abs(float64(p.Tensor().Data()[0]))
	for i := 0; i < 50; i++ {
		g, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32)
		require.NoError(t, err)
		g.AsFloat32()[0] = 2 * p.Tensor().Data()[0] // d/dx x²
		opt.Step(map[*tensor.RawTensor]*tensor.RawTensor{p.Tensor().Raw(): g})
	}
	final := math.Abs(float64(p.Tensor().Data()[0]))
	assert.Less(t, final, initial)
}
