package scanner

import "sync"

// maxStealBatch 限制一次从全局队列批量窃取的任务数。
const maxStealBatch = 32

// Injector 是全局无界多生产者多消费者队列。
// 任意 goroutine 都可以 Push，也可以从队头窃取任务。
type Injector[T any] struct {
	mu    sync.Mutex
	items []T
	head  int
}

// Push 把任务放到队尾。
func (q *Injector[T]) Push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

// size 返回队列中剩余任务数。
func (q *Injector[T]) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Steal 从队头取出一个任务。
func (q *Injector[T]) Steal() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.head == len(q.items) {
		return zero, false
	}
	item := q.popFrontLocked()
	return item, true
}

// StealBatchAndPop 从队头取走一批任务（约一半，且不超过 maxStealBatch），
// 返回其中第一个，其余放进 dest 本地队列。
func (q *Injector[T]) StealBatchAndPop(dest *Worker[T]) (T, bool) {
	q.mu.Lock()

	var zero T
	available := len(q.items) - q.head
	if available == 0 {
		q.mu.Unlock()
		return zero, false
	}

	count := (available + 1) / 2
	if count > maxStealBatch {
		count = maxStealBatch
	}

	first := q.popFrontLocked()
	rest := make([]T, 0, count-1)
	for i := 1; i < count; i++ {
		rest = append(rest, q.popFrontLocked())
	}
	q.mu.Unlock()

	dest.pushBatch(rest)
	return first, true
}

// popFrontLocked 取出队头元素，调用方必须持有锁且保证队列非空。
// 已消费部分超过一半时压缩底层切片，防止无限增长。
func (q *Injector[T]) popFrontLocked() T {
	var zero T
	item := q.items[q.head]
	q.items[q.head] = zero
	q.head++

	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head > 64 && q.head*2 > len(q.items):
		remaining := copy(q.items, q.items[q.head:])
		clear(q.items[remaining:])
		q.items = q.items[:remaining]
		q.head = 0
	}
	return item
}

// Worker 是某个生产者 goroutine 的本地双端队列。
// 拥有者从队尾 Pop（LIFO），其它 goroutine 通过 Stealer 从队头窃取（FIFO）。
type Worker[T any] struct {
	mu    sync.Mutex
	items []T
}

// NewWorker 创建本地队列。
func NewWorker[T any]() *Worker[T] {
	return &Worker[T]{}
}

// Push 把任务放到本地队尾。
func (w *Worker[T]) Push(item T) {
	w.mu.Lock()
	w.items = append(w.items, item)
	w.mu.Unlock()
}

func (w *Worker[T]) pushBatch(items []T) {
	if len(items) == 0 {
		return
	}
	w.mu.Lock()
	w.items = append(w.items, items...)
	w.mu.Unlock()
}

// Pop 从本地队尾取出任务。
func (w *Worker[T]) Pop() (T, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var zero T
	if len(w.items) == 0 {
		return zero, false
	}
	last := len(w.items) - 1
	item := w.items[last]
	w.items[last] = zero
	w.items = w.items[:last]
	return item, true
}

// size 返回本地队列长度。
func (w *Worker[T]) size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}

// Stealer 返回供其它 goroutine 使用的窃取句柄。
func (w *Worker[T]) Stealer() Stealer[T] {
	return Stealer[T]{worker: w}
}

// Stealer 是 Worker 的只窃取视图。
type Stealer[T any] struct {
	worker *Worker[T]
}

// Steal 从对应本地队列的队头窃取一个任务。
func (s Stealer[T]) Steal() (T, bool) {
	w := s.worker
	w.mu.Lock()
	defer w.mu.Unlock()

	var zero T
	if len(w.items) == 0 {
		return zero, false
	}
	item := w.items[0]
	w.items[0] = zero
	w.items = w.items[1:]
	return item, true
}
