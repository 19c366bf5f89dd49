package pipeline

import (
	"regexp"
	"strings"
)

var attrPattern = regexp.MustCompile(`([A-Za-z_:][-A-Za-z0-9_:.]*)\s*=\s*("[^"]*"|'[^']*'|[^\s"'>]+)`)

// urlAttrs are attributes whose value is dereferenced as a URL.
var urlAttrs = map[string]bool{
	"action":     true,
	"background": true,
	"cite":       true,
	"data":       true,
	"formaction": true,
	"href":       true,
	"longdesc":   true,
	"poster":     true,
	"src":        true,
	"usemap":     true,
	"xlink:href": true,
}

var scriptSchemes = []string{"javascript:", "vbscript:", "data:"}

// parseAttrs extracts name=value pairs from an opening tag's attribute
// string. Names are lowercased, quotes removed and unsafe pairs dropped.
func parseAttrs(s string) map[string]string {
	matches := attrPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(matches))
	for _, m := range matches {
		name := strings.ToLower(m[1])
		value := m[2]
		if n := len(value); n >= 2 && (value[0] == '"' || value[0] == '\'') {
			value = value[1 : n-1]
		}
		if !safeAttr(name, value) {
			continue
		}
		attrs[name] = value
	}
	return attrs
}

// safeAttr reports whether an attribute may reach the editor as live HTML.
func safeAttr(name, value string) bool {
	name = strings.ToLower(name)
	if strings.HasPrefix(name, "on") {
		return false
	}
	if urlAttrs[name] && isScriptURL(value) {
		return false
	}
	if name == "style" {
		v := compactLower(value)
		if strings.Contains(v, "expression(") || strings.Contains(v, "javascript:") {
			return false
		}
	}
	return true
}

// isScriptURL reports whether a URL carries a script-bearing scheme once
// whitespace and control characters browsers ignore are removed.
func isScriptURL(url string) bool {
	v := compactLower(url)
	for _, scheme := range scriptSchemes {
		if strings.HasPrefix(v, scheme) {
			return true
		}
	}
	return false
}

func compactLower(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return -1
		}
		return r
	}, strings.ToLower(s))
}
