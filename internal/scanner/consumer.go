package scanner

// runConsumer 是文件解析 goroutine 的主循环。
//
// 队列为空时检查完成标志：未置位则短暂休眠后重试；
// 已置位则再尝试一次窃取，仍为空才退出，避免丢掉完成前最后推入的文件。
func (p *pipeline) runConsumer() {
	for {
		task, ok := p.files.Steal()
		if !ok {
			if !p.done.Load() {
				p.backoff()
				continue
			}
			if task, ok = p.files.Steal(); !ok {
				return
			}
		}
		p.analyze(task)
	}
}
