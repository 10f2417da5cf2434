package languages

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLanguage 表示语言定义不满足约束。
var ErrInvalidLanguage = errors.New("invalid language definition")

// Keyword 描述一个关键字统计桶。
// Aliases 中的任意字面量命中都计入 Name 对应的桶。
type Keyword struct {
	Name    string
	Aliases []string
}

// Language 是数据驱动的语言定义。
// 加载完成后不可修改，由所有 goroutine 只读共享。
type Language struct {
	Name          string
	Extensions    []string
	StringSymbols []string
	CommentSymbol string
	// MultiLineStart/MultiLineEnd 同时为空表示该语言不支持块注释。
	MultiLineStart string
	MultiLineEnd   string
	Keywords       []Keyword
}

// SupportsMultiLine 返回语言是否定义了块注释。
func (l *Language) SupportsMultiLine() bool {
	return l.MultiLineStart != "" && l.MultiLineEnd != ""
}

// Validate 校验语言定义。
func (l *Language) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidLanguage)
	}
	if len(l.Extensions) == 0 {
		return fmt.Errorf("%w: %s has no extensions", ErrInvalidLanguage, l.Name)
	}
	if len(l.StringSymbols) == 0 || len(l.StringSymbols) > 2 {
		return fmt.Errorf("%w: %s must define 1 or 2 string symbols, got %d", ErrInvalidLanguage, l.Name, len(l.StringSymbols))
	}
	for _, symbol := range l.StringSymbols {
		if symbol == "" {
			return fmt.Errorf("%w: %s has an empty string symbol", ErrInvalidLanguage, l.Name)
		}
	}
	if l.CommentSymbol == "" {
		return fmt.Errorf("%w: %s has no comment symbol", ErrInvalidLanguage, l.Name)
	}
	if (l.MultiLineStart == "") != (l.MultiLineEnd == "") {
		return fmt.Errorf("%w: %s must define both multi-line markers or neither", ErrInvalidLanguage, l.Name)
	}

	seen := make(map[string]struct{}, len(l.Keywords))
	for _, keyword := range l.Keywords {
		if keyword.Name == "" {
			return fmt.Errorf("%w: %s has a keyword without name", ErrInvalidLanguage, l.Name)
		}
		if _, ok := seen[keyword.Name]; ok {
			return fmt.Errorf("%w: %s has duplicate keyword %q", ErrInvalidLanguage, l.Name, keyword.Name)
		}
		seen[keyword.Name] = struct{}{}
		if len(keyword.Aliases) == 0 {
			return fmt.Errorf("%w: %s keyword %q has no aliases", ErrInvalidLanguage, l.Name, keyword.Name)
		}
		for _, alias := range keyword.Aliases {
			if alias == "" {
				return fmt.Errorf("%w: %s keyword %q has an empty alias", ErrInvalidLanguage, l.Name, keyword.Name)
			}
		}
	}
	return nil
}

// normalizeExtension 统一后缀格式：小写并带点号。
func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
