package languages

import (
	"sort"
	"strings"
)

// ScanState 是跨行携带的扫描状态。
// 只在单个文件的扫描调用栈内存在，不在 goroutine 之间共享。
type ScanState struct {
	// OpenString 为上一行结束时仍未闭合的字符串符号，空串表示没有。
	OpenString  string
	CommentOpen bool
}

// LineClassification 是单行分类结果。
type LineClassification struct {
	// Cleansed 为去掉注释与字符串内容后剩余的代码文本。
	Cleansed    string
	HasCleansed bool
	// HasStringLiteral 表示该行打开过字符串，或者整行处于跨行字符串中。
	HasStringLiteral bool
	// State 为处理完该行之后的状态。
	State ScanState
}

type eventKind int

// 同一位置出现多个事件时按枚举顺序处理：
// 字符串 > 块注释开始 > 粘连的结束+开始 > 块注释结束 > 行注释。
const (
	eventString eventKind = iota
	eventCommentStart
	eventCommentToggle
	eventCommentEnd
	eventComment
)

// event 是某个标记在行内的一次出现。
type event struct {
	pos    int
	end    int
	kind   eventKind
	symbol string
}

type scanMode int

const (
	modeCode scanMode = iota
	modeString
	modeComment
)

// ClassifyLine 对单行做词法分类，是纯函数。
//
// 状态机只有三种模式：代码、字符串（记录打开符号）、块注释。
// 事件按位置排序后单次扫描；一次状态切换会吞掉其标记覆盖的区间，
// 起点落在该区间内的事件一律视为普通文本。
// 结束标记后一个标记长度内紧跟的开始标记（"*//*"、"*/*"）合并为一次切换：
// 注释打开时按结束处理，否则按开始处理，整段标记都不进入代码文本。
func ClassifyLine(line string, language *Language, state ScanState) LineClassification {
	if strings.TrimSpace(line) == "" {
		return LineClassification{State: state}
	}

	events := collectEvents(line, language)

	mode := modeCode
	openSymbol := ""
	switch {
	case state.OpenString != "":
		mode = modeString
		openSymbol = state.OpenString
	case state.CommentOpen:
		mode = modeComment
	}

	hasString := mode == modeString
	var buffer strings.Builder
	cursor := 0
	lineComment := false

	for _, current := range events {
		if current.pos < cursor {
			continue
		}

		switch mode {
		case modeCode:
			switch current.kind {
			case eventString:
				buffer.WriteString(line[cursor:current.pos])
				mode = modeString
				openSymbol = current.symbol
				hasString = true
				cursor = current.end
			case eventCommentStart, eventCommentToggle:
				buffer.WriteString(line[cursor:current.pos])
				mode = modeComment
				cursor = current.end
			case eventComment:
				buffer.WriteString(line[cursor:current.pos])
				cursor = len(line)
				lineComment = true
			}
		case modeString:
			// 只有打开字符串的符号才能关闭它。
			if current.kind == eventString && current.symbol == openSymbol {
				mode = modeCode
				openSymbol = ""
				cursor = current.end
			}
		case modeComment:
			if current.kind == eventCommentEnd || current.kind == eventCommentToggle {
				mode = modeCode
				cursor = current.end
			}
		}

		if lineComment {
			break
		}
	}

	if mode == modeCode && cursor < len(line) {
		buffer.WriteString(line[cursor:])
	}

	cleansed := buffer.String()
	result := LineClassification{
		HasStringLiteral: hasString,
		State: ScanState{
			OpenString:  openSymbol,
			CommentOpen: mode == modeComment,
		},
	}
	if strings.TrimSpace(cleansed) != "" {
		result.Cleansed = cleansed
		result.HasCleansed = true
	}
	return result
}

// collectEvents 找出行内全部标记并按 (位置, 优先级) 排序。
// 被奇数个反斜杠转义的字符串符号会被丢弃。
func collectEvents(line string, language *Language) []event {
	events := make([]event, 0, 8)

	for _, symbol := range language.StringSymbols {
		for _, pos := range indexAll(line, symbol, false) {
			if isEscaped(line, pos) {
				continue
			}
			events = append(events, event{pos: pos, end: pos + len(symbol), kind: eventString, symbol: symbol})
		}
	}

	var ends []int
	if language.SupportsMultiLine() {
		ends = indexAll(line, language.MultiLineEnd, true)
		starts := indexAll(line, language.MultiLineStart, true)
		events = appendCommentMarkers(events, starts, ends, len(language.MultiLineStart), len(language.MultiLineEnd))
	}

	for _, pos := range indexAll(line, language.CommentSymbol, true) {
		if overlapsEndTail(pos, ends, len(language.MultiLineEnd)) {
			continue
		}
		events = append(events, event{pos: pos, end: pos + len(language.CommentSymbol), kind: eventComment})
	}

	sort.SliceStable(events, func(i int, j int) bool {
		if events[i].pos != events[j].pos {
			return events[i].pos < events[j].pos
		}
		return events[i].kind < events[j].kind
	})
	return events
}

// appendCommentMarkers 追加块注释开始/结束事件。
// 结束标记之后一个标记长度内出现的开始标记与它合并成一个切换事件，
// 覆盖两者的整个区间。
func appendCommentMarkers(events []event, starts []int, ends []int, startLen int, endLen int) []event {
	paired := make(map[int]bool, len(starts))
	for _, endPos := range ends {
		glued := -1
		for _, startPos := range starts {
			if startPos > endPos && startPos-endPos <= endLen && !paired[startPos] {
				glued = startPos
				break
			}
		}
		if glued < 0 {
			events = append(events, event{pos: endPos, end: endPos + endLen, kind: eventCommentEnd})
			continue
		}
		paired[glued] = true
		events = append(events, event{pos: endPos, end: glued + startLen, kind: eventCommentToggle})
	}

	for _, startPos := range starts {
		if paired[startPos] {
			continue
		}
		events = append(events, event{pos: startPos, end: startPos + startLen, kind: eventCommentStart})
	}
	return events
}

// overlapsEndTail 判断从 pos 开始的行注释符号是否压在某个结束标记的尾部。
func overlapsEndTail(pos int, ends []int, endLen int) bool {
	for _, endPos := range ends {
		if endPos < pos && pos < endPos+endLen {
			return true
		}
	}
	return false
}

// indexAll 返回 marker 在 line 中的全部起始下标。
// overlapping 为 true 时允许重叠匹配（例如 "///" 中的两个 "//"），
// 注释标记需要这样做，否则前一个匹配被吞掉后会漏掉紧随其后的注释。
func indexAll(line string, marker string, overlapping bool) []int {
	if marker == "" || len(marker) > len(line) {
		return nil
	}

	var result []int
	offset := 0
	for offset <= len(line)-len(marker) {
		idx := strings.Index(line[offset:], marker)
		if idx < 0 {
			break
		}
		result = append(result, offset+idx)
		if overlapping {
			offset += idx + 1
		} else {
			offset += idx + len(marker)
		}
	}
	return result
}

// isEscaped 判断 pos 前紧邻的连续反斜杠是否为奇数个。
func isEscaped(line string, pos int) bool {
	count := 0
	for i := pos - 1; i >= 0 && line[i] == '\\'; i-- {
		count++
	}
	return count%2 == 1
}
