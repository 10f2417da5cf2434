package languages

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegistryLanguages 确认内置注册中心包含 9 种语言。
func TestRegistryLanguages(t *testing.T) {
	registry := NewRegistry()
	descriptors := registry.Languages()

	require.Len(t, descriptors, 9)
	for i := 1; i < len(descriptors); i++ {
		assert.Less(t, descriptors[i-1].Name, descriptors[i].Name)
	}

	requiredExtensions := []string{".go", ".js", ".ts", ".py", ".rs", ".rb", ".java", ".cpp", ".sql"}
	for _, extension := range requiredExtensions {
		_, ok := registry.LanguageForFile("x" + extension)
		assert.True(t, ok, "missing language for extension %s", extension)
	}

	language, ok := registry.LanguageForFile("DIR/Main.JAVA")
	require.True(t, ok)
	assert.Equal(t, "Java", language.Name)

	_, ok = registry.LanguageForFile("README")
	assert.False(t, ok)
	_, ok = registry.LanguageForFile("notes.txt")
	assert.False(t, ok)
}

func TestRegistryExtensionsForLanguage(t *testing.T) {
	registry := NewRegistry()

	assert.Equal(t, []string{".py", ".pyi"}, registry.ExtensionsForLanguage("Python"))
	assert.Nil(t, registry.ExtensionsForLanguage("Cobol"))
}

func TestRegistryRestrict(t *testing.T) {
	registry := NewRegistry()

	restricted, err := registry.Restrict([]string{"go", " Rust ", "GO"})
	require.NoError(t, err)
	assert.Equal(t, 2, restricted.Len())

	_, ok := restricted.LanguageForFile("main.go")
	assert.True(t, ok)
	_, ok = restricted.LanguageForFile("main.py")
	assert.False(t, ok)

	_, err = registry.Restrict([]string{"Cobol"})
	assert.Error(t, err)

	same, err := registry.Restrict(nil)
	require.NoError(t, err)
	assert.Same(t, registry, same)
}

func TestRegistryRejectsDuplicateExtension(t *testing.T) {
	first := &Language{Name: "A", Extensions: []string{".x"}, StringSymbols: []string{`"`}, CommentSymbol: "#"}
	second := &Language{Name: "B", Extensions: []string{"X"}, StringSymbols: []string{`"`}, CommentSymbol: "#"}

	_, err := NewRegistryFrom([]*Language{first, second})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidLanguage)
}

func TestParseLanguageDocuments(t *testing.T) {
	content := `name: Lua
extensions: [lua]
strings: ['"', "'"]
comment: "--"
multiline: ["--[[", "]]"]
keywords:
  - name: function
    aliases: [function]
---
name: Shell
extensions: [sh, .BASH]
strings: ['"']
comment: "#"
`
	parsed, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	lua := parsed[0]
	assert.Equal(t, "Lua", lua.Name)
	assert.Equal(t, []string{".lua"}, lua.Extensions)
	assert.Equal(t, "--[[", lua.MultiLineStart)
	assert.Equal(t, "]]", lua.MultiLineEnd)
	assert.True(t, lua.SupportsMultiLine())
	assert.Equal(t, []Keyword{{Name: "function", Aliases: []string{"function"}}}, lua.Keywords)

	shell := parsed[1]
	assert.Equal(t, []string{".sh", ".bash"}, shell.Extensions)
	assert.False(t, shell.SupportsMultiLine())
}

func TestParseRejectsInvalidDefinitions(t *testing.T) {
	tests := map[string]string{
		"too many strings": "name: X\nextensions: [x]\nstrings: ['\"', \"'\", '`']\ncomment: '#'\n",
		"no comment":       "name: X\nextensions: [x]\nstrings: ['\"']\n",
		"half multiline":   "name: X\nextensions: [x]\nstrings: ['\"']\ncomment: '#'\nmultiline: ['/*']\n",
		"no extension":     "name: X\nstrings: ['\"']\ncomment: '#'\n",
		"alias missing":    "name: X\nextensions: [x]\nstrings: ['\"']\ncomment: '#'\nkeywords:\n  - name: k\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(content))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidLanguage)
		})
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader("name: X\nextensions: [x]\nstrings: ['\"']\ncomment: '#'\ncolour: red\n"))
	assert.Error(t, err)
}

func TestLoadDirAndMerge(t *testing.T) {
	dir := t.TempDir()
	override := "name: Go\nextensions: [go]\nstrings: ['\"']\ncomment: '//'\nkeywords:\n  - name: defer\n    aliases: [defer]\n"
	extra := "name: Lua\nextensions: [lua]\nstrings: ['\"']\ncomment: '--'\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.yaml"), []byte(override), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lua.yml"), []byte(extra), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	loaded, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	merged, err := NewRegistry().Merge(loaded)
	require.NoError(t, err)
	assert.Equal(t, 10, merged.Len())

	golang, ok := merged.Lookup("Go")
	require.True(t, ok)
	assert.False(t, golang.SupportsMultiLine())
	require.Len(t, golang.Keywords, 1)
	assert.Equal(t, "defer", golang.Keywords[0].Name)

	_, ok = merged.LanguageForFile("init.lua")
	assert.True(t, ok)
}

func TestLoadDirMissing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
