package rfl

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingTask struct {
	counter *int64
	value   int64
}

func (task *countingTask) Execute() {
	atomic.AddInt64(task.counter, task.value)
}

func TestPoolRunsEveryTask(t *testing.T) {
	for _, threadsNum := range []int{0, 1, 3, 16} {
		var counter int64
		taskPool := NewPool(threadsNum)
		for value := int64(1); value <= 100; value++ {
			taskPool.AddTask(&countingTask{&counter, value})
		}
		taskPool.Close()
		taskPool.WaitAll()
		assert.Equal(t, int64(5050), counter, "threads %d", threadsNum)
	}
}
