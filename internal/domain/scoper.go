package domain

import (
	"strings"
	"unicode"
)

// rootElements are the selectors replaced by the scope class instead of
// being prefixed with it.
var rootElements = []string{"html", "body"}

// scanState is carried from one line to the next while scoping a stylesheet.
type scanState struct {
	inComment     bool
	inAtRuleBlock bool
	atRuleDepth   int
}

// Scope rewrites every top-level selector in source so the rule only applies
// inside elements matching scopeClass. Declarations, comments and the bodies
// of at-rules are emitted unchanged, and the output has exactly as many lines
// as the input. Scope never fails and performs no I/O.
func Scope(source, scopeClass string) string {
	scoped, _ := ScopeAndCount(source, scopeClass)

	return scoped
}

// ScopeAndCount is Scope that also reports how many lines were rewritten.
func ScopeAndCount(source, scopeClass string) (string, int) {
	lines := strings.Split(source, "\n")
	state := scanState{}
	rewritten := 0

	for i, line := range lines {
		var scoped string

		scoped, state = scopeLine(line, state, scopeClass)
		if scoped != line {
			rewritten++
		}

		lines[i] = scoped
	}

	return strings.Join(lines, "\n"), rewritten
}

// scopeLine classifies a single line and returns its output along with the
// state to carry into the next line.
func scopeLine(line string, state scanState, scopeClass string) (string, scanState) {
	if strings.Contains(line, "/*") {
		state.inComment = true
	}

	// A line closing a comment is never rewritten, even if a selector follows.
	if strings.Contains(line, "*/") {
		state.inComment = false
		return line, state
	}

	if state.inComment {
		return line, state
	}

	if strings.HasPrefix(strings.TrimLeftFunc(line, unicode.IsSpace), "@") {
		if strings.Contains(line, "{") {
			state = enterAtRule(state, braceDelta(line))
		}

		return line, state
	}

	// Rules nested in at-rule bodies pass through unscoped.
	if state.inAtRuleBlock {
		state = enterAtRule(state, braceDelta(line))
		return line, state
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed == "{" || trimmed == "}" {
		return line, state
	}

	open := strings.Index(line, "{")
	if open < 0 || strings.HasPrefix(trimmed, "}") {
		return line, state
	}

	return rewriteSelectorLine(line, open, scopeClass), state
}

// enterAtRule applies a brace delta to the at-rule depth. The block stays
// open only while the depth is positive.
func enterAtRule(state scanState, delta int) scanState {
	state.atRuleDepth += delta
	if state.atRuleDepth <= 0 {
		state.atRuleDepth = 0
		state.inAtRuleBlock = false

		return state
	}

	state.inAtRuleBlock = true

	return state
}

func braceDelta(line string) int {
	return strings.Count(line, "{") - strings.Count(line, "}")
}

// rewriteSelectorLine scopes the selector group in front of the brace at
// index open, keeping the indentation, the spacing before the brace and
// everything after it.
func rewriteSelectorLine(line string, open int, scopeClass string) string {
	head, rest := line[:open], line[open+1:]

	group := strings.TrimSpace(head)
	if group == "" {
		return line
	}

	indent := head[:len(head)-len(strings.TrimLeftFunc(head, unicode.IsSpace))]
	gap := head[len(strings.TrimRightFunc(head, unicode.IsSpace)):]

	return indent + scopeSelectorGroup(group, scopeClass) + gap + "{" + rest
}

// scopeSelectorGroup splits a selector group on every comma, scopes each
// selector and joins them back with ", ". Commas inside functional
// pseudo-classes such as :not(a, b) are split as well.
func scopeSelectorGroup(group, scopeClass string) string {
	selectors := strings.Split(group, ",")
	for i, selector := range selectors {
		selectors[i] = scopeSelector(strings.TrimSpace(selector), scopeClass)
	}

	return strings.Join(selectors, ", ")
}

func scopeSelector(selector, scopeClass string) string {
	if selector == "" || strings.HasPrefix(selector, scopeClass) {
		return selector
	}

	for _, root := range rootElements {
		if isRootSelector(selector, root) {
			return scopeClass + selector[len(root):]
		}
	}

	return scopeClass + " " + selector
}

// isRootSelector reports whether selector is the root element itself or
// starts with it followed by a descendant, pseudo-class or class.
func isRootSelector(selector, root string) bool {
	rest, ok := strings.CutPrefix(selector, root)
	if !ok {
		return false
	}

	return rest == "" || strings.ContainsRune(" :.", rune(rest[0]))
}
