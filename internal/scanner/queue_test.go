package scanner

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInjectorFIFO(t *testing.T) {
	var queue Injector[int]
	for i := 0; i < 5; i++ {
		queue.Push(i)
	}
	require.Equal(t, 5, queue.size())

	for i := 0; i < 5; i++ {
		item, ok := queue.Steal()
		require.True(t, ok)
		assert.Equal(t, i, item)
	}
	_, ok := queue.Steal()
	assert.False(t, ok)
	assert.Equal(t, 0, queue.size())
}

func TestInjectorStealBatchAndPop(t *testing.T) {
	var queue Injector[int]
	for i := 0; i < 10; i++ {
		queue.Push(i)
	}

	local := NewWorker[int]()
	first, ok := queue.StealBatchAndPop(local)
	require.True(t, ok)
	assert.Equal(t, 0, first)
	assert.Equal(t, 4, local.size())
	assert.Equal(t, 5, queue.size())

	// 拥有者从队尾弹出，同伴从队头窃取。
	last, ok := local.Pop()
	require.True(t, ok)
	assert.Equal(t, 4, last)
	stolen, ok := local.Stealer().Steal()
	require.True(t, ok)
	assert.Equal(t, 1, stolen)
	assert.Equal(t, 2, local.size())
}

func TestInjectorStealBatchIsCapped(t *testing.T) {
	var queue Injector[int]
	for i := 0; i < 500; i++ {
		queue.Push(i)
	}

	local := NewWorker[int]()
	_, ok := queue.StealBatchAndPop(local)
	require.True(t, ok)
	assert.Equal(t, maxStealBatch-1, local.size())
	assert.Equal(t, 500-maxStealBatch, queue.size())
}

func TestInjectorStealBatchEmpty(t *testing.T) {
	var queue Injector[string]
	local := NewWorker[string]()

	_, ok := queue.StealBatchAndPop(local)
	assert.False(t, ok)
	assert.Equal(t, 0, local.size())
}

func TestInjectorCompactsAfterManySteals(t *testing.T) {
	var queue Injector[int]
	for i := 0; i < 300; i++ {
		queue.Push(i)
	}
	for i := 0; i < 200; i++ {
		item, ok := queue.Steal()
		require.True(t, ok)
		require.Equal(t, i, item)
	}
	queue.Push(300)

	for i := 200; i <= 300; i++ {
		item, ok := queue.Steal()
		require.True(t, ok)
		require.Equal(t, i, item)
	}
	assert.Equal(t, 0, queue.size())
}

func TestInjectorConcurrentPushSteal(t *testing.T) {
	var queue Injector[int]
	const producers = 4
	const perProducer = 1000

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				queue.Push(base*perProducer + i)
			}
		}(p)
	}
	wg.Wait()

	var mu sync.Mutex
	seen := make(map[int]bool, producers*perProducer)
	for c := 0; c < 4; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := NewWorker[int]()
			for {
				item, ok := local.Pop()
				if !ok {
					item, ok = queue.StealBatchAndPop(local)
				}
				if !ok {
					return
				}
				mu.Lock()
				seen[item] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, producers*perProducer)
}

func TestWorkerEmpty(t *testing.T) {
	worker := NewWorker[string]()

	_, ok := worker.Pop()
	assert.False(t, ok)
	_, ok = worker.Stealer().Steal()
	assert.False(t, ok)

	worker.Push("a")
	item, ok := worker.Pop()
	require.True(t, ok)
	assert.Equal(t, "a", item)
}

func TestIdleTracker(t *testing.T) {
	tracker := newIdleTracker(3)

	assert.False(t, tracker.setIdleAndCheckAll(0))
	assert.False(t, tracker.setIdleAndCheckAll(1))
	assert.True(t, tracker.claim(0, func() bool { return true }))
	assert.False(t, tracker.setIdleAndCheckAll(2))
	assert.True(t, tracker.setIdleAndCheckAll(0))
}

func TestIdleTrackerClaimMiss(t *testing.T) {
	tracker := newIdleTracker(2)
	assert.False(t, tracker.setIdleAndCheckAll(0))

	// 没有取到任务时标志保持空闲。
	assert.False(t, tracker.claim(0, func() bool { return false }))
	assert.True(t, tracker.setIdleAndCheckAll(1))
}

func TestIdleTrackerClaimBlocksAllIdleCheck(t *testing.T) {
	tracker := newIdleTracker(2)
	tracker.setIdleAndCheckAll(0)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan bool)
	go func() {
		done <- tracker.claim(0, func() bool {
			close(entered)
			<-release
			return true
		})
	}()
	<-entered

	checked := make(chan bool)
	go func() {
		checked <- tracker.setIdleAndCheckAll(1)
	}()
	close(release)

	assert.True(t, <-done)
	// 同伴的检查只能发生在 claim 清除标志之后。
	assert.False(t, <-checked)
}

func TestIdleTrackerSingleProducer(t *testing.T) {
	tracker := newIdleTracker(1)
	assert.True(t, tracker.setIdleAndCheckAll(0))
}
