package template

import (
	"regexp"
	"strings"
)

// Render evaluates a template body against the given context. Structurally
// malformed bodies fail with a template error; missing variables render as
// empty strings. Block passes (#if, #unless, #each) run before variable
// substitution so block tags are never corrupted by substituted content.
func Render(body string, ctx Value) (string, error) {
	if err := Validate(body); err != nil {
		return "", err
	}
	return render(body, ctx), nil
}

func render(s string, ctx Value) string {
	s = conditionalPass(s, "if", ctx, true)
	s = conditionalPass(s, "unless", ctx, false)
	s = eachPass(s, ctx)
	return variablePass(s, ctx)
}

// matchClose returns the index of the closing tag that balances the block
// whose body starts at bodyStart, or -1 when the block is unterminated.
func matchClose(s, tag string, bodyStart int) int {
	openTok := "{{#" + tag
	closeTok := "{{/" + tag + "}}"
	depth := 1
	i := bodyStart
	for {
		nextOpen := strings.Index(s[i:], openTok)
		nextClose := strings.Index(s[i:], closeTok)
		if nextClose < 0 {
			return -1
		}
		if nextOpen >= 0 && nextOpen < nextClose {
			depth++
			i += nextOpen + len(openTok)
			continue
		}
		depth--
		if depth == 0 {
			return i + nextClose
		}
		i += nextClose + len(closeTok)
	}
}

// conditionalPass resolves #if or #unless blocks outermost-first against the
// current context. Blocks nested inside #each bodies are left untouched here;
// they are evaluated per element with the derived context during the each
// pass.
func conditionalPass(s, tag string, ctx Value, keepWhen bool) string {
	openTok := "{{#" + tag + " "
	closeTok := "{{/" + tag + "}}"
	pos := 0
	for {
		idx := strings.Index(s[pos:], "{{#")
		if idx < 0 {
			return s
		}
		idx += pos
		rest := s[idx:]
		switch {
		case strings.HasPrefix(rest, "{{#each "):
			// Defer everything inside the iteration body.
			condEnd := strings.Index(s[idx:], "}}")
			if condEnd < 0 {
				return s
			}
			end := matchClose(s, "each", idx+condEnd+2)
			if end < 0 {
				return s
			}
			pos = end + len("{{/each}}")
		case strings.HasPrefix(rest, openTok):
			condStart := idx + len(openTok)
			condEnd := strings.Index(s[condStart:], "}}")
			if condEnd < 0 {
				return s
			}
			condEnd += condStart
			bodyStart := condEnd + 2
			end := matchClose(s, tag, bodyStart)
			if end < 0 {
				return s
			}
			var repl string
			if evalCondition(strings.TrimSpace(s[condStart:condEnd]), ctx) == keepWhen {
				repl = s[bodyStart:end]
			}
			s = s[:idx] + repl + s[end+len(closeTok):]
			pos = idx
		default:
			pos = idx + len("{{#")
		}
	}
}

// eachPass expands #each blocks. Each element renders the block body through
// the full pipeline with a derived context binding this, @index, @first, and
// @last, so nested blocks and variables see the element scope.
func eachPass(s string, ctx Value) string {
	const openTok = "{{#each "
	const closeTok = "{{/each}}"
	pos := 0
	for {
		idx := strings.Index(s[pos:], openTok)
		if idx < 0 {
			return s
		}
		idx += pos
		pathStart := idx + len(openTok)
		pathEnd := strings.Index(s[pathStart:], "}}")
		if pathEnd < 0 {
			return s
		}
		pathEnd += pathStart
		bodyStart := pathEnd + 2
		end := matchClose(s, "each", bodyStart)
		if end < 0 {
			return s
		}

		path := strings.TrimSpace(s[pathStart:pathEnd])
		body := s[bodyStart:end]
		items := ctx.Lookup(path).Items()

		var b strings.Builder
		for i, item := range items {
			derived := ctx.
				With("this", item).
				With("@index", Number(float64(i))).
				With("@first", Bool(i == 0)).
				With("@last", Bool(i == len(items)-1))
			b.WriteString(render(body, derived))
		}
		expanded := b.String()
		s = s[:idx] + expanded + s[end+len(closeTok):]
		// Expanded content is fully rendered; skip past it.
		pos = idx + len(expanded)
	}
}

// varRe matches a substitution expression: a path optionally followed by a
// chain of formatters. Block open/close tags are excluded by the leading
// character class.
var varRe = regexp.MustCompile(`\{\{([^#/{}][^{}]*)\}\}`)

func variablePass(s string, ctx Value) string {
	return varRe.ReplaceAllStringFunc(s, func(m string) string {
		expr := strings.TrimSpace(m[2 : len(m)-2])
		parts := strings.Split(expr, "|")
		path := strings.TrimSpace(parts[0])
		v := ctx.Lookup(path)
		return applyFormatters(v, parts[1:])
	})
}
