package languages

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var builtinFS embed.FS

// keywordDocument 是语言文件中单个关键字的 YAML 结构。
type keywordDocument struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// languageDocument 是语言文件的 YAML 结构。
type languageDocument struct {
	Name       string            `yaml:"name"`
	Extensions []string          `yaml:"extensions"`
	Strings    []string          `yaml:"strings"`
	Comment    string            `yaml:"comment"`
	MultiLine  []string          `yaml:"multiline"`
	Keywords   []keywordDocument `yaml:"keywords"`
}

func (d languageDocument) toLanguage() (*Language, error) {
	language := &Language{
		Name:          strings.TrimSpace(d.Name),
		StringSymbols: append([]string(nil), d.Strings...),
		CommentSymbol: d.Comment,
	}
	for _, ext := range d.Extensions {
		if normalized := normalizeExtension(ext); normalized != "" {
			language.Extensions = append(language.Extensions, normalized)
		}
	}

	switch len(d.MultiLine) {
	case 0:
	case 2:
		language.MultiLineStart = d.MultiLine[0]
		language.MultiLineEnd = d.MultiLine[1]
	default:
		return nil, fmt.Errorf("%w: %s multiline must have exactly 2 markers, got %d", ErrInvalidLanguage, language.Name, len(d.MultiLine))
	}

	for _, keyword := range d.Keywords {
		language.Keywords = append(language.Keywords, Keyword{
			Name:    keyword.Name,
			Aliases: append([]string(nil), keyword.Aliases...),
		})
	}

	if err := language.Validate(); err != nil {
		return nil, err
	}
	return language, nil
}

// Parse 从 reader 解析一个或多个 YAML 语言文档（以 --- 分隔）。
func Parse(reader io.Reader) ([]*Language, error) {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	var result []*Language
	for {
		var document languageDocument
		err := decoder.Decode(&document)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode language: %w", err)
		}
		language, convErr := document.toLanguage()
		if convErr != nil {
			return nil, convErr
		}
		result = append(result, language)
	}
	return result, nil
}

// LoadBuiltin 加载随二进制嵌入的内置语言定义。
func LoadBuiltin() ([]*Language, error) {
	return loadFS(builtinFS, "data")
}

// LoadDir 加载目录下全部 *.yaml / *.yml 语言文件。
func LoadDir(dir string) ([]*Language, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat languages dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("languages dir %s is not a directory", dir)
	}
	return loadFS(os.DirFS(dir), ".")
}

func loadFS(fsys fs.FS, root string) ([]*Language, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("read languages dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var result []*Language
	for _, name := range names {
		content, readErr := fs.ReadFile(fsys, filepath.ToSlash(filepath.Join(root, name)))
		if readErr != nil {
			return nil, fmt.Errorf("read language file %s: %w", name, readErr)
		}
		parsed, parseErr := Parse(bytes.NewReader(content))
		if parseErr != nil {
			return nil, fmt.Errorf("%s: %w", name, parseErr)
		}
		result = append(result, parsed...)
	}
	return result, nil
}
