package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEngine(t *testing.T) {
	tests := []struct {
		input    string
		expected Engine
		wantErr  bool
	}{
		{input: "", expected: EngineNative},
		{input: "native", expected: EngineNative},
		{input: " Library ", expected: EngineLibrary},
		{input: "pandoc", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			engine, err := ParseEngine(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnknownEngine)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, engine)
		})
	}
}

func TestNewParser_UnknownEngine(t *testing.T) {
	p, err := NewParser(Engine("pandoc"), nil)
	assert.ErrorIs(t, err, ErrUnknownEngine)
	assert.Nil(t, p)
}

func TestParser_Engines(t *testing.T) {
	input := `<h1>Title</h1><p>keep <a href="https://x">link</a></p><script>drop()</script>`

	for _, engine := range []Engine{EngineNative, EngineLibrary} {
		t.Run(string(engine), func(t *testing.T) {
			p, err := NewParser(engine, []string{"script", "style"})
			require.NoError(t, err)
			assert.Equal(t, engine, p.Engine())

			md, err := p.ToMarkdown(input)
			require.NoError(t, err)
			assert.Contains(t, md, "# Title")
			assert.Contains(t, md, "[link](https://x)")
			assert.NotContains(t, md, "drop()")
		})
	}
}

func TestParser_LibrarySkipTags(t *testing.T) {
	p, err := NewParser(EngineLibrary, []string{"ASIDE"})
	require.NoError(t, err)

	md, err := p.ToMarkdown("<aside>hidden</aside><p>shown</p>")
	require.NoError(t, err)
	assert.NotContains(t, md, "hidden")
	assert.Contains(t, md, "shown")
}

func TestParser_NativeOutput(t *testing.T) {
	p, err := NewParser(EngineNative, nil)
	require.NoError(t, err)

	md, err := p.ToMarkdown("<ul><li>a</li><li>b</li></ul>")
	require.NoError(t, err)
	assert.Equal(t, "- a\n- b", md)
}
