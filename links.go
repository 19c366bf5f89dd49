package wysiwyg

import (
	"net/url"
	"strings"
)

// NewURLBaseExpander returns an expander that turns topic references into
// view URLs under base: "Topic" becomes base/<current web>/Topic and
// "Web.Topic#Anchor" becomes base/Web/Topic#Anchor. Targets that already
// are URLs or absolute paths are returned unchanged.
func NewURLBaseExpander(base string) URLExpander {
	base = strings.TrimRight(base, "/")
	return func(target string, ctx LinkContext) string {
		if target == "" || strings.HasPrefix(target, "/") || strings.HasPrefix(target, "#") {
			return target
		}
		if u, err := url.Parse(target); err == nil && u.Scheme != "" {
			return target
		}

		ref, anchor, _ := strings.Cut(target, "#")
		web, topic := ctx.Web, ref
		if i := strings.LastIndex(ref, "."); i > 0 {
			web, topic = ref[:i], ref[i+1:]
		}
		topic = strings.ReplaceAll(strings.TrimSpace(topic), " ", "")

		var b strings.Builder
		b.WriteString(base)
		if web != "" {
			for _, part := range strings.FieldsFunc(web, isWebSeparator) {
				b.WriteString("/" + url.PathEscape(part))
			}
		}
		b.WriteString("/" + url.PathEscape(topic))
		if anchor != "" {
			b.WriteString("#" + url.PathEscape(anchor))
		}
		return b.String()
	}
}

func isWebSeparator(r rune) bool {
	return r == '.' || r == '/'
}
