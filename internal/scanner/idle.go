package scanner

import "sync"

// idleTracker 实现生产者之间的分布式空闲检测。
//
// 每个生产者只写自己的标志位；只有当所有标志位同时为 true 时才允许退出。
// 某个生产者短暂误判空闲不会造成任务丢失：拿到新任务的 goroutine
// 会先清除自己的标志位，再向队列推送后续任务。
type idleTracker struct {
	mu   sync.Mutex
	idle []bool
}

func newIdleTracker(size int) *idleTracker {
	return &idleTracker{idle: make([]bool, size)}
}

// claim 在持有空闲锁期间调用 find，找到任务时同时清除 index 的空闲标志。
// 已空闲的生产者必须经由这里取任务：否则取走任务与清除标志之间，
// 同伴可能看到“全部空闲”而提前退出。
func (t *idleTracker) claim(index int, find func() bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !find() {
		return false
	}
	t.idle[index] = false
	return true
}

// setIdleAndCheckAll 标记 index 为空闲，并返回是否所有生产者都已空闲。
func (t *idleTracker) setIdleAndCheckAll(index int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.idle[index] = true
	for _, idle := range t.idle {
		if !idle {
			return false
		}
	}
	return true
}
