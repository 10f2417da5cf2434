package scanner

import (
	"os"
	"path/filepath"
	"strings"
)

// runProducer 是目录遍历 goroutine 的主循环。
//
// 状态：优先消费本地队列 → 从全局队列批量窃取 → 从其它生产者窃取 → 空闲。
// 所有生产者同时空闲时全部退出。
func (p *pipeline) runProducer(index int) {
	local := p.locals[index]
	idle := false
	for {
		var dir string
		var ok bool
		if idle {
			ok = p.idle.claim(index, func() bool {
				dir, ok = p.findDirectory(local, index)
				return ok
			})
		} else {
			dir, ok = p.findDirectory(local, index)
		}

		if !ok {
			if p.idle.setIdleAndCheckAll(index) {
				return
			}
			idle = true
			p.backoff()
			continue
		}

		idle = false
		p.walkDirectory(local, dir)
	}
}

// findDirectory 按 本地 → 全局 → 同伴 的顺序寻找下一个目录。
func (p *pipeline) findDirectory(local *Worker[string], index int) (string, bool) {
	if dir, ok := local.Pop(); ok {
		return dir, true
	}
	if dir, ok := p.dirs.StealBatchAndPop(local); ok {
		return dir, true
	}

	count := len(p.stealers)
	for offset := 1; offset < count; offset++ {
		if dir, ok := p.stealers[(index+offset)%count].Steal(); ok {
			return dir, true
		}
	}
	return "", false
}

// walkDirectory 列出目录项：源码文件进入文件队列，子目录进入本地队列。
// 广度通过可被窃取的队列展开，不使用递归。
func (p *pipeline) walkDirectory(local *Worker[string], dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		// 目录不可读（权限、并发删除）时只放弃该子树。
		p.logger.Debug("scan.dir_unreadable", "path", dir, "error", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)

		switch {
		case entry.IsDir():
			if !p.options.SearchInDotted && strings.HasPrefix(name, ".") {
				continue
			}
			if p.excluder.Match(path) {
				continue
			}
			local.Push(path)

		case entry.Type().IsRegular():
			p.totalFiles.Add(1)

			language, ok := p.registry.LanguageForFile(path)
			if !ok {
				continue
			}
			if p.excluder.Match(path) {
				continue
			}

			var size int64
			if info, infoErr := entry.Info(); infoErr == nil {
				size = info.Size()
			}
			p.metadata.add(language.Name, size)
			p.files.Push(fileTask{path: path, language: language, bytes: size})
		}
	}
}
