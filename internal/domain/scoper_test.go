package domain

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScopeClass = ".scope"

func TestScope_Selectors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"html replaced", "html { margin: 0; }", ".scope { margin: 0; }"},
		{"body with class", "body.dark { }", ".scope.dark { }"},
		{"body pseudo-class", "body:hover {", ".scope:hover {"},
		{"html descendant", "html .page {", ".scope .page {"},
		{"html prefix is not html", "htmlFoo {", ".scope htmlFoo {"},
		{"body prefix is not body", "bodyguard {", ".scope bodyguard {"},
		{"comma separated", ".a, .b { color: blue; }", ".scope .a, .scope .b { color: blue; }"},
		{"comma spacing normalized", ".a,.b  ,  .c {", ".scope .a, .scope .b, .scope .c {"},
		{"default prepend", ".widget button { }", ".scope .widget button { }"},
		{"no space before brace", ".a{color:red}", ".scope .a{color:red}"},
		{"indentation kept", "\t  .a {", "\t  .scope .a {"},
		{"already scoped", ".scope .a { }", ".scope .a { }"},
		{"mixed scoped and unscoped", ".scope .a, .b {", ".scope .a, .scope .b {"},
		{"naive split inside pseudo-class", ":not(.a, .b) {", ".scope :not(.a, .scope .b) {"},
		{"carriage return kept", ".a {\r", ".scope .a {\r"},
		{"only first brace splits", ".a { content: '{'; }", ".scope .a { content: '{'; }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Scope(tt.source, testScopeClass))
		})
	}
}

func TestScope_PassThroughLines(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"empty input", ""},
		{"blank line", "   "},
		{"lone open brace", "  {"},
		{"lone close brace", "}"},
		{"declaration", "  color: red;"},
		{"close brace with trailing content", "} .a {"},
		{"single line comment", "/* color: red; */"},
		{"selector inside comment", "/* .a { color: red; } */"},
		{"comment close with selector", "*/ .a {"},
		{"at-rule without block", "@import url(\"base.css\");"},
		{"indented at-rule", "  @charset \"utf-8\";"},
		{"one-line at-rule block", "@font-face { font-family: x; }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.source, Scope(tt.source, testScopeClass))
		})
	}
}

func TestScope_MultiLineComment(t *testing.T) {
	source := strings.Join([]string{
		"/* header",
		".a {",
		"html {",
		"end */",
		".b {",
	}, "\n")

	want := strings.Join([]string{
		"/* header",
		".a {",
		"html {",
		"end */",
		".scope .b {",
	}, "\n")

	assert.Equal(t, want, Scope(source, testScopeClass))
}

func TestScope_OpeningCommentOnSelectorLine(t *testing.T) {
	source := ".a { /* note\n  still comment\n*/\n.b {"
	want := ".a { /* note\n  still comment\n*/\n.scope .b {"

	assert.Equal(t, want, Scope(source, testScopeClass))
}

func TestScope_AtRulePassThrough(t *testing.T) {
	source := "@media (max-width: 600px) {\n  .foo { color: red; }\n}"

	assert.Equal(t, source, Scope(source, testScopeClass))
}

func TestScope_NestedAtRules(t *testing.T) {
	source := strings.Join([]string{
		"@supports (display: grid) {",
		"  @media (min-width: 10px) {",
		"    .grid {",
		"      display: grid;",
		"    }",
		"  }",
		"  .inner {",
		"  }",
		"}",
		".after {",
		"}",
	}, "\n")

	got := strings.Split(Scope(source, testScopeClass), "\n")
	want := strings.Split(source, "\n")
	want[9] = ".scope .after {"

	assert.Equal(t, want, got)
}

func TestScope_AtRuleBraceOnNextLine(t *testing.T) {
	source := "@keyframes spin\n{\n  from { opacity: 0; }\n}"
	want := "@keyframes spin\n{\n  .scope from { opacity: 0; }\n}"

	assert.Equal(t, want, Scope(source, testScopeClass))
}

func TestScope_UnbalancedAtRuleCloses(t *testing.T) {
	source := "@media print {\n}}\n.a {"
	want := "@media print {\n}}\n.scope .a {"

	assert.Equal(t, want, Scope(source, testScopeClass))
}

func TestScopeAndCount(t *testing.T) {
	source := "html {\n  margin: 0;\n}\n.a, .b {\n}\n/* .c { */"

	scoped, rewritten := ScopeAndCount(source, testScopeClass)
	assert.Equal(t, 2, rewritten)
	assert.Equal(t, ".scope {\n  margin: 0;\n}\n.scope .a, .scope .b {\n}\n/* .c { */", scoped)

	_, rewritten = ScopeAndCount(scoped, testScopeClass)
	assert.Equal(t, 0, rewritten)
}

func TestScope_Properties(t *testing.T) {
	fixtures, err := filepath.Glob(filepath.Join("..", "..", "examples", "*", "style.css"))
	require.NoError(t, err)
	require.NotEmpty(t, fixtures)

	inputs := []string{
		"",
		"\n\n",
		"a,,b {\n}",
		"{ color: red }",
		"html, body, .x:not(.y, .z) {\n}\n",
		"@media print {\n  .a { }\n}\n.b {",
	}

	for _, fixture := range fixtures {
		content, err := os.ReadFile(fixture)
		require.NoError(t, err)

		inputs = append(inputs, string(content))
	}

	for _, source := range inputs {
		once := Scope(source, testScopeClass)
		twice := Scope(once, testScopeClass)

		assert.Equal(t, once, twice, "scoping must be idempotent for %q", source)
		assert.Equal(t, strings.Count(source, "\n"), strings.Count(once, "\n"), "line count must be preserved for %q", source)
	}
}

func TestScope_ExampleFixtures(t *testing.T) {
	tests := []struct {
		dir string
	}{
		{"basic"},
		{"comments"},
		{"media"},
	}

	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			root := filepath.Join("..", "..", "examples", tt.dir)

			source, err := os.ReadFile(filepath.Join(root, "style.css"))
			require.NoError(t, err)

			want, err := os.ReadFile(filepath.Join(root, "style.scoped.css"))
			require.NoError(t, err)

			assert.Equal(t, string(want), Scope(string(source), ".fillInTheBlank-experiment"))
		})
	}
}
