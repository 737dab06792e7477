package harvest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "headers stripped",
			input: "# Title\n## Section\nBody text",
			want:  "Title Section Body text",
		},
		{
			name:  "code blocks removed",
			input: "Before\n```go\nfunc main() {}\n```\nAfter",
			want:  "Before After",
		},
		{
			name:  "inline code removed",
			input: "Run `make build` to compile",
			want:  "Run to compile",
		},
		{
			name:  "links keep their text",
			input: "See [the docs](https://example.com) for details",
			want:  "See the docs for details",
		},
		{
			name:  "images dropped entirely",
			input: "Logo: ![alt text](logo.png) done",
			want:  "Logo: done",
		},
		{
			name:  "bold and italic unwrapped",
			input: "**bold** and *italic* and __under__ and _score_",
			want:  "bold and italic and under and score",
		},
		{
			name:  "bullets flattened",
			input: "- one\n- two\n1. three",
			want:  "one two three",
		},
		{
			name:  "html tags removed",
			input: "<p>Hello <b>world</b></p>",
			want:  "Hello world",
		},
		{
			name:  "blockquotes unwrapped",
			input: "> quoted line\nnormal",
			want:  "quoted line normal",
		},
		{
			name:  "whitespace collapsed",
			input: "a\n\n\nb\t\tc",
			want:  "a b c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanMarkdown(tt.input, 0))
		})
	}
}

func TestCleanMarkdownTruncates(t *testing.T) {
	input := strings.Repeat("palabra ", 100)

	got := CleanMarkdown(input, 50)

	assert.LessOrEqual(t, len([]rune(got)), 53)
	assert.True(t, strings.HasSuffix(got, "..."))
	// The cut lands on a word boundary, never mid-word.
	trimmed := strings.TrimSuffix(got, "...")
	assert.False(t, strings.HasSuffix(trimmed, " "))
	for _, w := range strings.Fields(trimmed) {
		assert.Equal(t, "palabra", w)
	}
}

func TestTruncateAtWordShortText(t *testing.T) {
	assert.Equal(t, "short", truncateAtWord("short", 100))
	assert.Equal(t, "exact", truncateAtWord("exact", 5))
}

func TestTruncateAtWordUnicode(t *testing.T) {
	// Rune-based limit: accented characters count as one.
	got := truncateAtWord("está documentación aquí", 10)
	assert.Equal(t, "está...", got)
}
