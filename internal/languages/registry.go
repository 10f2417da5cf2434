package languages

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// LanguageDescriptor 用于对外展示语言及后缀信息。
type LanguageDescriptor struct {
	Name       string
	Extensions []string
	Keywords   []string
}

// Registry 管理语言定义与后缀映射。
// 构建完成后只读，可被多个 goroutine 并发查询。
type Registry struct {
	languages  []*Language
	byName     map[string]*Language
	langByExt  map[string]*Language
	extsByName map[string][]string
}

// NewRegistry 创建内置语言注册中心。
// 内置定义随二进制嵌入，解析失败属于构建期错误，因此直接 panic。
func NewRegistry() *Registry {
	builtin, err := LoadBuiltin()
	if err != nil {
		panic(fmt.Sprintf("load builtin languages: %v", err))
	}
	registry, err := NewRegistryFrom(builtin)
	if err != nil {
		panic(fmt.Sprintf("build builtin registry: %v", err))
	}
	return registry
}

// NewRegistryFrom 根据给定语言定义构建注册中心。
// 同一后缀被多个语言声明时返回错误。
func NewRegistryFrom(definitions []*Language) (*Registry, error) {
	registry := &Registry{
		languages:  make([]*Language, 0, len(definitions)),
		byName:     make(map[string]*Language, len(definitions)),
		langByExt:  make(map[string]*Language),
		extsByName: make(map[string][]string, len(definitions)),
	}

	for _, language := range definitions {
		if err := language.Validate(); err != nil {
			return nil, err
		}
		if _, ok := registry.byName[language.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate language %q", ErrInvalidLanguage, language.Name)
		}
		registry.byName[language.Name] = language
		registry.languages = append(registry.languages, language)

		extensions := make([]string, 0, len(language.Extensions))
		for _, raw := range language.Extensions {
			ext := normalizeExtension(raw)
			if owner, ok := registry.langByExt[ext]; ok {
				return nil, fmt.Errorf("%w: extension %s claimed by both %s and %s", ErrInvalidLanguage, ext, owner.Name, language.Name)
			}
			registry.langByExt[ext] = language
			extensions = append(extensions, ext)
		}
		sort.Strings(extensions)
		registry.extsByName[language.Name] = extensions
	}

	sort.Slice(registry.languages, func(i int, j int) bool {
		return registry.languages[i].Name < registry.languages[j].Name
	})
	return registry, nil
}

// LanguageForFile 根据文件后缀查找语言。
func (r *Registry) LanguageForFile(path string) (*Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil, false
	}
	language, ok := r.langByExt[ext]
	return language, ok
}

// Lookup 按名称查找语言。
func (r *Registry) Lookup(name string) (*Language, bool) {
	language, ok := r.byName[name]
	return language, ok
}

// Len 返回已注册语言数量。
func (r *Registry) Len() int {
	return len(r.languages)
}

// Restrict 按允许列表返回一个子注册中心，名称大小写不敏感。
// 空列表表示不过滤。
func (r *Registry) Restrict(names []string) (*Registry, error) {
	if len(names) == 0 {
		return r, nil
	}

	selected := make([]*Language, 0, len(names))
	picked := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		var match *Language
		for _, language := range r.languages {
			if strings.EqualFold(language.Name, name) {
				match = language
				break
			}
		}
		if match == nil {
			return nil, fmt.Errorf("unknown language %q", name)
		}
		if _, ok := picked[match.Name]; ok {
			continue
		}
		picked[match.Name] = struct{}{}
		selected = append(selected, match)
	}
	return NewRegistryFrom(selected)
}

// Merge 用 overrides 覆盖同名语言并追加新语言，返回新的注册中心。
func (r *Registry) Merge(overrides []*Language) (*Registry, error) {
	replaced := make(map[string]*Language, len(overrides))
	for _, language := range overrides {
		replaced[language.Name] = language
	}

	merged := make([]*Language, 0, len(r.languages)+len(overrides))
	for _, language := range r.languages {
		if _, ok := replaced[language.Name]; ok {
			continue
		}
		merged = append(merged, language)
	}
	merged = append(merged, overrides...)
	return NewRegistryFrom(merged)
}

// Languages 返回已注册语言清单。
func (r *Registry) Languages() []LanguageDescriptor {
	result := make([]LanguageDescriptor, 0, len(r.languages))
	for _, language := range r.languages {
		keywords := make([]string, 0, len(language.Keywords))
		for _, keyword := range language.Keywords {
			keywords = append(keywords, keyword.Name)
		}
		result = append(result, LanguageDescriptor{
			Name:       language.Name,
			Extensions: append([]string(nil), r.extsByName[language.Name]...),
			Keywords:   keywords,
		})
	}
	return result
}

// ExtensionsForLanguage 返回指定语言对应的全部后缀。
func (r *Registry) ExtensionsForLanguage(language string) []string {
	extensions, ok := r.extsByName[language]
	if !ok {
		return nil
	}
	return append([]string(nil), extensions...)
}
