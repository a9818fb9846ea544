package optim

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relic-ml/relic/internal/backend/cpu"
	"github.com/relic-ml/relic/internal/loadable"
	"github.com/relic-ml/relic/internal/nn"
)

// TestCheckpointResumesTraining saves a model/optimizer pair mid-run,
// restores it, and checks the next step produces identical parameters
// on both sides.
func TestCheckpointResumesTraining(t *testing.T) {
	backend := cpu.New()
	model := nn.NewSequential[B](
		nn.NewLinear(3, 2, backend),
		nn.NewReLU[B](),
	)
	opt := NewAdam(model.Parameters(), AdamConfig{LR: 0.01}, backend)

	grads := onesLike(t, model.Parameters())
	opt.Step(grads)
	opt.Step(grads)

	path := filepath.Join(t.TempDir(), "run.relic")
	err := loadable.SaveCheckpoint(path, &loadable.Checkpoint{
		Model:     model,
		Optimizer: opt,
		Epoch:     1,
		Step:      2,
		Loss:      0.37,
	})
	require.NoError(t, err)

	cp, err := loadable.LoadCheckpoint(path, backend)
	require.NoError(t, err)
	assert.Equal(t, 1, cp.Epoch)
	assert.Equal(t, int64(2), cp.Step)
	assert.InDelta(t, 0.37, cp.Loss, 1e-9)

	restoredModel := cp.Model.(*nn.Sequential[B])
	restoredOpt := cp.Optimizer.(*Adam[B])
	require.NoError(t, restoredOpt.SetParams(restoredModel.Parameters()))
	assert.Equal(t, int64(2), restoredOpt.Timestep())

	// One more step on each side must agree exactly.
	opt.Step(grads)
	restoredOpt.Step(onesLike(t, restoredModel.Parameters()))

	origState := model.StateDict()
	restoredState := restoredModel.StateDict()
	require.Len(t, restoredState, len(origState))
	for key, raw := range origState {
		require.Contains(t, restoredState, key)
		assert.True(t, raw.Equal(restoredState[key]), "parameter %q diverged", key)
	}
}

// TestCheckpointWithSGDMomentum round-trips velocity buffers through a
// checkpoint artifact.
func TestCheckpointWithSGDMomentum(t *testing.T) {
	backend := cpu.New()
	model := nn.NewLinear(2, 2, backend)
	opt := NewSGD(model.Parameters(), SGDConfig{LR: 0.1, Momentum: 0.9}, backend)
	opt.Step(onesLike(t, model.Parameters()))

	path := filepath.Join(t.TempDir(), "sgd.relic")
	require.NoError(t, loadable.SaveCheckpoint(path, &loadable.Checkpoint{
		Model:     model,
		Optimizer: opt,
	}))

	cp, err := loadable.LoadCheckpoint(path, backend)
	require.NoError(t, err)
	restoredOpt := cp.Optimizer.(*SGD[B])
	require.NoError(t, restoredOpt.SetParams(cp.Model.(*nn.Linear[B]).Parameters()))

	want := opt.StateDict()
	got := restoredOpt.StateDict()
	require.Len(t, got, len(want))
	for key, raw := range want {
		require.Contains(t, got, key)
		assert.True(t, raw.Equal(got[key]), "velocity %q differs", key)
	}
}

// TestCheckpointRejectsStaleOptimizerState verifies SetParams fails
// when the restored state does not fit the model it is attached to.
func TestCheckpointRejectsStaleOptimizerState(t *testing.T) {
	backend := cpu.New()
	model := nn.NewLinear(2, 2, backend)
	opt := NewAdam(model.Parameters(), AdamConfig{}, backend)
	opt.Step(onesLike(t, model.Parameters()))

	path := filepath.Join(t.TempDir(), "stale.relic")
	require.NoError(t, loadable.SaveCheckpoint(path, &loadable.Checkpoint{
		Model:     model,
		Optimizer: opt,
	}))

	cp, err := loadable.LoadCheckpoint(path, backend)
	require.NoError(t, err)
	restoredOpt := cp.Optimizer.(*Adam[B])

	other := nn.NewLinear(5, 3, backend)
	assert.Error(t, restoredOpt.SetParams(other.Parameters()))
}
