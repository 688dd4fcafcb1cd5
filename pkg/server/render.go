package server

import (
	"fmt"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/vango-dev/fieldset/pkg/formdef"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// sanitizeText strips markup from definition-supplied text (labels,
// help, placeholders). Definitions are data, not trusted templates.
// The sanitizer output is entity-escaped and safe for HTML content
// positions.
func sanitizeText(raw string) string {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(textPolicy.Sanitize(raw))
}

// renderPage renders the full form page for a definition.
func renderPage(def *formdef.Definition) string {
	var b strings.Builder
	b.Grow(4096)

	title := sanitizeText(def.Form)

	b.WriteString("<!doctype html>\n")
	b.WriteString("<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	b.WriteString("<title>")
	b.WriteString(title)
	b.WriteString("</title>\n")
	b.WriteString("<style>")
	b.WriteString(pageCSS)
	b.WriteString("</style>\n")
	b.WriteString("</head>\n<body>\n<main>\n")

	b.WriteString("<h1>")
	b.WriteString(title)
	b.WriteString("</h1>\n")

	b.WriteString("<form id=\"fieldset-form\" novalidate>\n")
	for i := range def.Fields {
		writeField(&b, &def.Fields[i])
	}
	b.WriteString("<button type=\"submit\">Submit</button>\n")
	b.WriteString("<p class=\"flash\" id=\"fieldset-flash\" hidden></p>\n")
	b.WriteString("</form>\n")

	b.WriteString("</main>\n")
	b.WriteString("<script src=\"/client.js\" defer></script>\n")
	b.WriteString("</body>\n</html>\n")

	return b.String()
}

// writeField renders one field block: label, input, optional help text
// and an initially hidden error slot the thin client fills from error
// ops.
func writeField(b *strings.Builder, fd *formdef.FieldDef) {
	name := escapeAttr(fd.Name)

	label := sanitizeText(fd.Label)
	if label == "" {
		label = escapeHTML(fd.Name)
	}

	b.WriteString("<div class=\"field\" data-field=\"")
	b.WriteString(name)
	b.WriteString("\">\n")

	b.WriteString("<label for=\"")
	b.WriteString(name)
	b.WriteString("\">")
	b.WriteString(label)
	if fd.Required != nil {
		b.WriteString(" <span class=\"req\" aria-hidden=\"true\">*</span>")
	}
	b.WriteString("</label>\n")

	b.WriteString("<input id=\"")
	b.WriteString(name)
	b.WriteString("\" name=\"")
	b.WriteString(name)
	b.WriteString("\" type=\"")
	b.WriteString(inputType(fd.Kind))
	b.WriteString("\"")
	if fd.Kind == "number" {
		b.WriteString(" inputmode=\"decimal\"")
	}
	if fd.Placeholder != "" {
		b.WriteString(" placeholder=\"")
		b.WriteString(escapeAttr(sanitizeText(fd.Placeholder)))
		b.WriteString("\"")
	}
	if fd.Initial != nil {
		b.WriteString(" value=\"")
		b.WriteString(escapeAttr(fmt.Sprintf("%v", fd.Initial)))
		b.WriteString("\"")
	}
	if fd.Autofocus {
		b.WriteString(" autofocus")
	}
	b.WriteString(">\n")

	if fd.Help != "" {
		b.WriteString("<p class=\"help\">")
		b.WriteString(sanitizeText(fd.Help))
		b.WriteString("</p>\n")
	}

	b.WriteString("<p class=\"error\" data-error-for=\"")
	b.WriteString(name)
	b.WriteString("\" hidden></p>\n")

	b.WriteString("</div>\n")
}

// inputType maps a definition field kind to an input type attribute.
// Number fields stay type=text so the raw string reaches the form
// unmangled; coercion belongs to the field's value transform.
func inputType(kind string) string {
	switch kind {
	case "password":
		return "password"
	default:
		return "text"
	}
}

// escapeHTML escapes text for safe inclusion in HTML content.
func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// escapeAttr escapes text for safe inclusion in HTML attribute values.
// In addition to the standard HTML entities, it also escapes whitespace
// characters that could break attribute parsing.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// pageCSS is the embedded stylesheet for the form page.
const pageCSS = `
:root { color-scheme: light dark; }
body { font-family: system-ui, sans-serif; margin: 0; padding: 2rem 1rem; display: flex; justify-content: center; }
main { width: 100%; max-width: 28rem; }
h1 { font-size: 1.4rem; margin: 0 0 1.5rem; }
.field { margin-bottom: 1.25rem; }
label { display: block; font-weight: 600; margin-bottom: 0.35rem; }
.req { color: #d33; }
input { width: 100%; box-sizing: border-box; padding: 0.5rem 0.65rem; font-size: 1rem; border: 1px solid #999; border-radius: 6px; }
input[aria-invalid="true"] { border-color: #d33; outline-color: #d33; }
.help { margin: 0.3rem 0 0; font-size: 0.85rem; opacity: 0.75; }
.error { margin: 0.3rem 0 0; font-size: 0.85rem; color: #d33; }
button { padding: 0.55rem 1.4rem; font-size: 1rem; border: none; border-radius: 6px; background: #3565d8; color: #fff; cursor: pointer; }
button:hover { background: #2a52b0; }
.flash { margin-top: 1rem; font-size: 0.9rem; color: #2b7a37; }
`
