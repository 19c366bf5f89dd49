package pipeline

import "strings"

// extractDirectives protects preference settings such as
//
//	   * Set NAME = value
//	     continued value
//
// as one block fragment per directive, continuation lines included.
func (r *run) extractDirectives(text string) string {
	if !strings.Contains(text, "Set") && !strings.Contains(text, "Local") {
		return text
	}
	p := r.engine.patterns
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		if !p.directive.MatchString(lines[i]) {
			out = append(out, lines[i])
			continue
		}
		j := i + 1
		for j < len(lines) && p.continuation.MatchString(lines[j]) && !p.listItem.MatchString(lines[j]) {
			j++
		}
		out = append(out, r.arena.Protect(Fragment{
			Kind:    KindProtected,
			Wrapper: ElementDiv,
			Text:    strings.Join(lines[i:j], "\n"),
		}))
		i = j - 1
	}
	return strings.Join(out, "\n")
}
