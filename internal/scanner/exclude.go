package scanner

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// excluder 判断路径是否命中排除列表。
//
// 普通条目按“完全相等”或“按路径分量的后缀相等”匹配，
// 例如 vendor 会排除 /repo/vendor 与 /repo/pkg/vendor，但不会排除 /repo/myvendor。
// 含通配符的条目交给 doublestar 处理。
type excluder struct {
	exact    []string
	patterns []string
}

func newExcluder(entries []string) *excluder {
	result := &excluder{}
	for _, raw := range entries {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		entry = filepath.ToSlash(filepath.Clean(entry))
		if entry != "/" {
			entry = strings.TrimSuffix(entry, "/")
		}

		if hasGlobMeta(entry) && doublestar.ValidatePattern(entry) {
			result.patterns = append(result.patterns, entry)
			continue
		}
		result.exact = append(result.exact, entry)
	}
	return result
}

// Match 返回路径是否应被排除。
func (e *excluder) Match(path string) bool {
	if len(e.exact) == 0 && len(e.patterns) == 0 {
		return false
	}

	slashPath := filepath.ToSlash(filepath.Clean(path))
	for _, entry := range e.exact {
		if slashPath == entry || strings.HasSuffix(slashPath, "/"+entry) {
			return true
		}
	}

	relative := strings.TrimPrefix(slashPath, "/")
	for _, pattern := range e.patterns {
		if strings.HasPrefix(pattern, "/") {
			if matched, _ := doublestar.Match(pattern, slashPath); matched {
				return true
			}
			continue
		}
		if matched, _ := doublestar.Match(pattern, relative); matched {
			return true
		}
		if strings.HasPrefix(pattern, "**") {
			continue
		}
		// 相对模式可以命中任意深度的后缀。
		if matched, _ := doublestar.Match("**/"+pattern, relative); matched {
			return true
		}
	}
	return false
}

func hasGlobMeta(entry string) bool {
	return strings.ContainsAny(entry, "*?[{")
}
