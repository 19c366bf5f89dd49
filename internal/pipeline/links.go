package pipeline

import (
	"regexp"
	"strings"
)

// LinkContext is the topic a link was found in.
type LinkContext struct {
	Web   string
	Topic string
}

// URLExpander rewrites a link target into the URL the editor shows.
type URLExpander func(url string, ctx LinkContext) string

var (
	squareLinkPattern = regexp.MustCompile(`\[\[([^\]\n]+)\](?:\[([^\]\n]+)\])?\]`)

	wikiWordPattern = regexp.MustCompile(`(?m)(^|[\s(>])((?:[A-Z][A-Za-z0-9]*\.)?[A-Z]+[a-z0-9]+[A-Z][A-Za-z0-9]*(?:#[A-Za-z0-9_]+)?)`)
)

// protectLinks lifts [[target]], [[target][label]] and bare WikiWords out
// as link fragments.
func (r *run) protectLinks(text string) string {
	if strings.Contains(text, "[[") {
		text = squareLinkPattern.ReplaceAllStringFunc(text, func(link string) string {
			m := squareLinkPattern.FindStringSubmatch(link)
			target := strings.TrimSpace(r.arena.Unprotect(m[1]))
			label := target
			if m[2] != "" {
				label = r.arena.Unprotect(m[2])
			}
			return r.linkFragment(link, target, label)
		})
	}

	locs := wikiWordPattern.FindAllStringSubmatchIndex(text, -1)
	if locs == nil {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range locs {
		start, end := m[4], m[5]
		if end < len(text) && text[end] == '_' {
			continue
		}
		word := text[start:end]
		b.WriteString(text[last:start])
		b.WriteString(r.linkFragment(word, word, word))
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

func (r *run) linkFragment(source, target, label string) string {
	attrs := map[string]string{"data-wikilink": r.arena.Unprotect(source)}
	href := target
	if r.opts.URLExpander != nil {
		href = r.opts.URLExpander(target, LinkContext{Web: r.opts.Web, Topic: r.opts.Topic})
	}
	if href != "" && !isScriptURL(href) {
		attrs["href"] = href
	}
	return r.arena.Protect(Fragment{
		Kind:    KindLink,
		Wrapper: ElementAnchor,
		Attrs:   attrs,
		Text:    label,
		Source:  source,
	})
}
