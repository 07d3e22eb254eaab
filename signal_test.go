package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignal_Push_DeliversToAllPortsInConnectionOrder(t *testing.T) {
	sig := NewSignal[int]("s")

	qa := NewQueuePort[int](nil, "a")
	qb := NewQueuePort[int](nil, "b")
	sig.Connect(qa)
	sig.Connect(qb)

	sig.Push(1)
	sig.Push(2)

	va, ok := qa.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, va)
	vb, ok := qb.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, vb)

	// both ports independently observed every push, in push order.
	va2, _ := qa.Pop()
	vb2, _ := qb.Pop()
	assert.Equal(t, 2, va2)
	assert.Equal(t, 2, vb2)
}

func TestSignal_Push_SamplePortAndQueuePortTogether(t *testing.T) {
	sig := NewSignal[string]("mixed")
	sample := NewSamplePort[string](nil, "sample")
	queue := NewQueuePort[string](nil, "queue")
	sig.Connect(sample)
	sig.Connect(queue)

	sig.Push("a")
	sig.Push("b")

	v, ok := sample.Get()
	require.True(t, ok)
	assert.Equal(t, "b", v) // sample port holds only the latest

	v1, ok1 := queue.Pop()
	require.True(t, ok1)
	assert.Equal(t, "a", v1)
	v2, ok2 := queue.Pop()
	require.True(t, ok2)
	assert.Equal(t, "b", v2) // queue port kept both, in push order
}

func TestSignal_Name(t *testing.T) {
	sig := NewSignal[int]("throughput")
	assert.Equal(t, "throughput", sig.Name())
}
