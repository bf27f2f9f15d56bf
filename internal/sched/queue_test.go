package sched

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunOneIsFIFO(t *testing.T) {
	q := NewQueue()
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		q.Post(func() { order = append(order, i) })
	}
	require.Equal(t, 3, q.Pending())

	for q.RunOne() {
	}
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.False(t, q.RunOne())
}

func TestDrainRunsTasksPostedWhileDraining(t *testing.T) {
	q := NewQueue()
	count := 0
	var step func()
	step = func() {
		count++
		if count < 5 {
			q.Post(step)
		}
	}
	q.Post(step)

	require.NoError(t, q.Drain(context.Background()))
	assert.Equal(t, 5, count)
	assert.Equal(t, 0, q.Pending())
}

func TestDrainStopsOnCancel(t *testing.T) {
	q := NewQueue()
	ran := false
	q.Post(func() { ran = true })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, q.Drain(ctx), context.Canceled)
	assert.False(t, ran)
	assert.Equal(t, 1, q.Pending())
}
