package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relic-ml/relic/internal/backend/cpu"
	"github.com/relic-ml/relic/internal/loadable"
	"github.com/relic-ml/relic/internal/nn"
	"github.com/relic-ml/relic/internal/tensor"
)

// TestSGD_Step verifies the plain update rule.
func TestSGD_Step(t *testing.T) {
	backend := cpu.New()
	p := singleParam(t, backend, 1.0, 2.0)
	opt := NewSGD([]*nn.Parameter[B]{p}, SGDConfig{LR: 0.1}, backend)

	opt.Step(onesLike(t, []*nn.Parameter[B]{p}))
	assert.InDeltaSlice(t, []float32{0.9, 1.9}, p.Tensor().Data(), 1e-6)
}

// TestSGD_Momentum verifies velocity accumulation over two steps.
func TestSGD_Momentum(t *testing.T) {
	backend := cpu.New()
	p := singleParam(t, backend, 1.0)
	opt := NewSGD([]*nn.Parameter[B]{p}, SGDConfig{LR: 0.1, Momentum: 0.9}, backend)
	grads := onesLike(t, []*nn.Parameter[B]{p})

	// Step 1: v = 1, p = 1 - 0.1 = 0.9.
	opt.Step(grads)
	assert.InDelta(t, 0.9, p.Tensor().Data()[0], 1e-6)

	// Step 2: v = 0.9 + 1 = 1.9, p = 0.9 - 0.19 = 0.71.
	opt.Step(grads)
	assert.InDelta(t, 0.71, p.Tensor().Data()[0], 1e-6)
}

// TestSGD_Defaults verifies the recorded hyperparameters carry the
// resolved defaults.
func TestSGD_Defaults(t *testing.T) {
	backend := cpu.New()
	opt := NewSGD(nil, SGDConfig{}, backend)
	assert.InDelta(t, 0.01, opt.LR(), 1e-9)

	rec, err := loadable.Serialize(opt)
	require.NoError(t, err)

	node, err := loadable.Deserialize(rec, backend)
	require.NoError(t, err)
	restored := node.(*SGD[B])
	assert.InDelta(t, 0.01, restored.LR(), 1e-6)
}

// TestSGD_CaptureExcludesParams verifies the capture record carries an
// empty parameter placeholder plus hyperparameters, never the tensors.
func TestSGD_CaptureExcludesParams(t *testing.T) {
	backend := cpu.New()
	model := nn.NewLinear(4, 2, backend)
	opt := NewSGD(model.Parameters(), SGDConfig{LR: 0.05, Momentum: 0.9}, backend)

	rec, err := loadable.Serialize(opt)
	require.NoError(t, err)

	require.Len(t, rec.Args, 1)
	require.Equal(t, loadable.KindList, rec.Args[0].Kind)
	assert.Empty(t, rec.Args[0].List, "parameter placeholder must be empty")

	kwargs := make(map[string]float64)
	for _, kw := range rec.Kwargs {
		kwargs[kw.Key] = kw.Value.Leaf.Float
	}
	assert.InDelta(t, 0.05, kwargs["lr"], 1e-6)
	assert.InDelta(t, 0.9, kwargs["momentum"], 1e-6)
}

// TestSGD_StateRoundTrip verifies velocities restore into a fresh
// optimizer after SetParams.
func TestSGD_StateRoundTrip(t *testing.T) {
	backend := cpu.New()
	model := nn.NewLinear(2, 2, backend)
	opt := NewSGD(model.Parameters(), SGDConfig{LR: 0.1, Momentum: 0.9}, backend)

	grads := onesLike(t, model.Parameters())
	opt.Step(grads)
	opt.Step(grads)

	rec, err := loadable.Serialize(opt)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.State, "momentum velocities should be saved")

	node, err := loadable.Deserialize(rec, backend)
	require.NoError(t, err)
	restored := node.(*SGD[B])
	assert.InDelta(t, 0.1, restored.LR(), 1e-6)

	// Until re-linked, the restored optimizer exports no state.
	assert.Empty(t, restored.StateDict())

	require.NoError(t, restored.SetParams(model.Parameters()))

	want := opt.StateDict()
	got := restored.StateDict()
	require.Len(t, got, len(want))
	for key, raw := range want {
		require.Contains(t, got, key)
		assert.True(t, raw.Equal(got[key]), "velocity %q differs", key)
	}
}

// TestSGD_SetParamsValidation verifies shape and key checks when
// re-linking restored state.
func TestSGD_SetParamsValidation(t *testing.T) {
	backend := cpu.New()

	t.Run("shape mismatch", func(t *testing.T) {
		opt := NewSGD(nil, SGDConfig{Momentum: 0.9}, backend)
		v, err := tensor.NewRaw(tensor.Shape{3}, tensor.Float32)
		require.NoError(t, err)
		require.NoError(t, opt.LoadStateDict(map[string]*tensor.RawTensor{"velocity.0": v}))

		p := singleParam(t, backend, 1, 2)
		assert.ErrorContains(t, opt.SetParams([]*nn.Parameter[B]{p}), "shape mismatch")
	})

	t.Run("velocity for missing parameter", func(t *testing.T) {
		opt := NewSGD(nil, SGDConfig{Momentum: 0.9}, backend)
		v, err := tensor.NewRaw(tensor.Shape{2}, tensor.Float32)
		require.NoError(t, err)
		require.NoError(t, opt.LoadStateDict(map[string]*tensor.RawTensor{"velocity.5": v}))

		p := singleParam(t, backend, 1, 2)
		assert.ErrorContains(t, opt.SetParams([]*nn.Parameter[B]{p}), "only 1 parameters")
	})

	t.Run("unexpected key", func(t *testing.T) {
		opt := NewSGD(nil, SGDConfig{Momentum: 0.9}, backend)
		v, err := tensor.NewRaw(tensor.Shape{2}, tensor.Float32)
		require.NoError(t, err)
		require.NoError(t, opt.LoadStateDict(map[string]*tensor.RawTensor{"bogus": v}))

		p := singleParam(t, backend, 1, 2)
		assert.ErrorContains(t, opt.SetParams([]*nn.Parameter[B]{p}), "unexpected state key")
	})
}

// TestSGD_ZeroGrad verifies gradient clearing.
func TestSGD_ZeroGrad(t *testing.T) {
	backend := cpu.New()
	p := singleParam(t, backend, 1, 2)
	p.SetGrad(tensor.Zeros[float32](tensor.Shape{2}, backend))

	opt := NewSGD([]*nn.Parameter[B]{p}, SGDConfig{}, backend)
	opt.ZeroGrad()
	assert.Nil(t, p.Grad())
}
