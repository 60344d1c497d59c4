// Package sanitize neutralizes executable markup in user-supplied text.
//
// Whitelisted tags are re-emitted with only their whitelisted attributes;
// every other tag is escaped so it renders as text. Comments are dropped.
package sanitize

import (
	"html"
	"strings"

	nethtml "golang.org/x/net/html"
)

var defaultTags = map[string][]string{
	"a":          {"href", "title", "target"},
	"abbr":       {"title"},
	"b":          nil,
	"blockquote": nil,
	"br":         nil,
	"code":       nil,
	"del":        nil,
	"div":        nil,
	"em":         nil,
	"h1":         nil,
	"h2":         nil,
	"h3":         nil,
	"h4":         nil,
	"h5":         nil,
	"h6":         nil,
	"hr":         nil,
	"i":          nil,
	"img":        {"src", "alt", "title", "width", "height"},
	"li":         nil,
	"ol":         nil,
	"p":          nil,
	"pre":        nil,
	"small":      nil,
	"span":       nil,
	"strong":     nil,
	"sub":        nil,
	"sup":        nil,
	"table":      nil,
	"tbody":      nil,
	"td":         nil,
	"th":         nil,
	"thead":      nil,
	"tr":         nil,
	"u":          nil,
	"ul":         nil,
}

var safeURLPrefixes = []string{
	"#", "/", "./", "../",
	"http://", "https://", "mailto:", "tel:", "ftp://",
	"data:image/",
}

var urlAttrs = map[string]bool{"href": true, "src": true}

// Policy decides which tags and attributes survive sanitization.
type Policy struct {
	tags map[string]map[string]bool
}

// NewPolicy returns the default policy: common formatting tags, links and images.
func NewPolicy() *Policy {
	p := &Policy{tags: make(map[string]map[string]bool, len(defaultTags))}
	for tag, attrs := range defaultTags {
		p.AllowTag(tag, attrs...)
	}
	return p
}

// AllowTag whitelists tag together with the given attributes.
func (p *Policy) AllowTag(tag string, attrs ...string) {
	allowed := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		allowed[strings.ToLower(a)] = true
	}
	p.tags[strings.ToLower(tag)] = allowed
}

var defaultPolicy = NewPolicy()

// Sanitize applies the default policy.
func Sanitize(s string) string {
	return defaultPolicy.Sanitize(s)
}

// Sanitize returns s with non-whitelisted markup escaped and unsafe attributes removed.
func (p *Policy) Sanitize(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	z := nethtml.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == nethtml.ErrorToken {
			// At EOF Raw holds whatever an unterminated tag left behind.
			b.WriteString(escapeAngles(string(z.Raw())))
			return b.String()
		}

		switch tt {
		case nethtml.TextToken:
			b.WriteString(escapeAngles(string(z.Raw())))
		case nethtml.StartTagToken, nethtml.SelfClosingTagToken:
			raw := string(z.Raw())
			tok := z.Token()
			if attrs, ok := p.tags[tok.Data]; ok {
				writeStartTag(&b, tok, attrs, tt == nethtml.SelfClosingTagToken)
			} else {
				b.WriteString(escapeAngles(raw))
			}
		case nethtml.EndTagToken:
			raw := string(z.Raw())
			tok := z.Token()
			if _, ok := p.tags[tok.Data]; ok {
				b.WriteString("</" + tok.Data + ">")
			} else {
				b.WriteString(escapeAngles(raw))
			}
		case nethtml.CommentToken, nethtml.DoctypeToken:
			// dropped
		}
	}
}

func writeStartTag(b *strings.Builder, tok nethtml.Token, allowed map[string]bool, selfClosing bool) {
	b.WriteString("<")
	b.WriteString(tok.Data)
	for _, attr := range tok.Attr {
		key := strings.ToLower(attr.Key)
		if attr.Namespace != "" || !allowed[key] {
			continue
		}
		if urlAttrs[key] && !safeURL(attr.Val) {
			continue
		}
		b.WriteString(" ")
		b.WriteString(key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(attr.Val))
		b.WriteString(`"`)
	}
	if selfClosing {
		b.WriteString(" /")
	}
	b.WriteString(">")
}

// safeURL accepts relative references and a fixed set of schemes.
func safeURL(raw string) bool {
	v := strings.ToLower(strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return -1
		}
		return r
	}, raw))

	for _, prefix := range safeURLPrefixes {
		if strings.HasPrefix(v, prefix) {
			return true
		}
	}

	// No scheme at all, e.g. "page.html" or "img/cover.png".
	colon := strings.IndexByte(v, ':')
	return colon < 0 || (strings.IndexByte(v, '/') >= 0 && strings.IndexByte(v, '/') < colon)
}

var angleEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

func escapeAngles(s string) string {
	return angleEscaper.Replace(s)
}
