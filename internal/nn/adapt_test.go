package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relic-ml/relic/internal/backend/cpu"
	"github.com/relic-ml/relic/internal/loadable"
	"github.com/relic-ml/relic/internal/tensor"
)

// TestAdapt_SerializeRoundTrip verifies a wrapped third-party module
// round-trips through its registered adapter key.
func TestAdapt_SerializeRoundTrip(t *testing.T) {
	backend := cpu.New()

	wrapped, err := Adapt[B](scaleKey, &plainScale{factor: 3}, 3.0)
	require.NoError(t, err)

	rec, err := loadable.Serialize(wrapped)
	require.NoError(t, err)
	assert.Equal(t, scaleKey, rec.Key())

	node, err := loadable.Deserialize(rec, backend)
	require.NoError(t, err)
	restored, ok := node.(*Adapted[B])
	require.True(t, ok, "expected *Adapted, got %T", node)

	inner, ok := restored.Unwrap().(*plainScale)
	require.True(t, ok, "expected *plainScale, got %T", restored.Unwrap())
	assert.Equal(t, float32(3), inner.factor)

	x, err := tensor.FromSlice([]float32{1, -2}, tensor.Shape{2}, backend)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{3, -6}, restored.Forward(x).Data(), 1e-6)
}

// TestAdapt_ReserializeReproducesRecord verifies a restored adapted
// module serializes back to the same record.
func TestAdapt_ReserializeReproducesRecord(t *testing.T) {
	backend := cpu.New()

	wrapped, err := Adapt[B](scaleKey, &plainScale{factor: 2.5}, 2.5)
	require.NoError(t, err)

	rec, err := loadable.Serialize(wrapped)
	require.NoError(t, err)

	node, err := loadable.Deserialize(rec, backend)
	require.NoError(t, err)

	rec2, err := loadable.Serialize(node.(*Adapted[B]))
	require.NoError(t, err)
	assert.Equal(t, rec.Key(), rec2.Key())
	require.Len(t, rec2.Args, 1)
	assert.Equal(t, rec.Args[0].Leaf.Float, rec2.Args[0].Leaf.Float)
}

// TestAdapt_RejectsUncapturableArgs verifies wrap-time argument
// validation.
func TestAdapt_RejectsUncapturableArgs(t *testing.T) {
	_, err := Adapt[B](scaleKey, &plainScale{factor: 1}, make(chan int))
	assert.Error(t, err)
}

// TestAdapt_KeyerOverride verifies the wrapper reports its adapter key
// instead of a type-derived one.
func TestAdapt_KeyerOverride(t *testing.T) {
	wrapped, err := Adapt[B](scaleKey, &plainScale{factor: 1}, 1.0)
	require.NoError(t, err)

	key, ok := loadable.KeyOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, scaleKey, key)
}

// TestAdapt_InContainer verifies adapted modules mix with native ones
// inside a container round trip.
func TestAdapt_InContainer(t *testing.T) {
	backend := cpu.New()

	wrapped, err := Adapt[B](scaleKey, &plainScale{factor: 2}, 2.0)
	require.NoError(t, err)
	l := NewLinear(2, 2, backend)
	setLinear(t, l, []float32{1, 0, 0, 1}, []float32{0, 0})
	model := NewSequential[B](l, wrapped)

	rec, err := loadable.Serialize(model)
	require.NoError(t, err)

	node, err := loadable.Deserialize(rec, backend)
	require.NoError(t, err)
	restored := node.(*Sequential[B])

	x, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{1, 2}, backend)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{2, 4}, restored.Forward(x).Data(), 1e-6)
}
