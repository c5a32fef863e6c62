package template

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Validate statically checks a template body: delimiter balance and matched
// open/close counts for every block tag. It never evaluates conditions, so it
// is safe to run against untrusted bodies at template-creation time.
func Validate(body string) error {
	if strings.Count(body, "{{") != strings.Count(body, "}}") {
		return ErrUnbalancedDelimiters
	}
	for _, tag := range []string{"if", "unless", "each"} {
		opens := strings.Count(body, "{{#"+tag+" ")
		closes := strings.Count(body, "{{/"+tag+"}}")
		if opens != closes {
			return fmt.Errorf("%w: %d #%s against %d /%s", ErrUnmatchedBlock, opens, tag, closes, tag)
		}
	}
	return nil
}

var (
	blockTagRe = regexp.MustCompile(`\{\{#(if|unless|each)\s+([^}]+)\}\}`)
	quotedRe   = regexp.MustCompile(`^(".*"|'.*')$`)
)

// ExtractVariables returns the deduplicated, sorted set of root variable
// names a template references, across substitution expressions and block
// conditions. Formatter arguments and loop bindings are excluded.
func ExtractVariables(body string) []string {
	seen := make(map[string]struct{})

	for _, m := range varRe.FindAllStringSubmatch(body, -1) {
		expr := strings.TrimSpace(m[1])
		path, _, _ := strings.Cut(expr, "|")
		addRoot(seen, path)
	}

	for _, m := range blockTagRe.FindAllStringSubmatch(body, -1) {
		cond := strings.TrimSpace(m[2])
		if m[1] == "each" {
			addRoot(seen, cond)
			continue
		}
		for _, op := range splitComparison(cond) {
			addRoot(seen, op)
		}
	}

	vars := make([]string, 0, len(seen))
	for v := range seen {
		vars = append(vars, v)
	}
	slices.Sort(vars)
	return vars
}

func splitComparison(cond string) []string {
	if left, right, ok := strings.Cut(cond, "!=="); ok {
		return []string{left, right}
	}
	if left, right, ok := strings.Cut(cond, "==="); ok {
		return []string{left, right}
	}
	return []string{cond}
}

func addRoot(seen map[string]struct{}, path string) {
	path = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(path), "!"))
	if path == "" || quotedRe.MatchString(path) {
		return
	}
	root, _, _ := strings.Cut(path, ".")
	if root == "" || root == "this" || strings.HasPrefix(root, "@") {
		return
	}
	seen[root] = struct{}{}
}
