package languages

import "codestat/internal/model"

// CountKeywords 在清洗后的代码片段中统计关键字，并累加到 stats。
func CountKeywords(segment string, keywords []Keyword, stats *model.FileStats) {
	for _, keyword := range keywords {
		var total int64
		for _, alias := range keyword.Aliases {
			total += countAlias(segment, alias)
		}
		stats.AddKeyword(keyword.Name, total)
	}
}

// countAlias 统计单个别名在片段中作为独立单词出现的次数。
//
// 首尾相接的一对匹配（前一个的结尾等于后一个的开头）会被一起丢弃，
// 它们不是真正的单词边界。其余匹配要求前后字符为边界字符或行首行尾。
func countAlias(segment string, alias string) int64 {
	matches := indexAll(segment, alias, false)
	if len(matches) == 0 {
		return 0
	}

	var count int64
	for i := 0; i < len(matches); i++ {
		start := matches[i]
		end := start + len(alias)
		if i+1 < len(matches) && matches[i+1] == end {
			i++
			continue
		}
		if start > 0 && !isKeywordBoundary(segment[start-1]) {
			continue
		}
		if end < len(segment) && !isKeywordBoundary(segment[end]) {
			continue
		}
		count++
	}
	return count
}

func isKeywordBoundary(c byte) bool {
	switch c {
	case ' ', '{', '}', ',':
		return true
	default:
		return false
	}
}
