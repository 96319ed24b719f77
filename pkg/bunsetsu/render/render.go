// Package render serializes chunk sequences into sanitized HTML. Every
// chunk becomes one child element of a single root span, so a single
// outer selector can style the whole sentence, and the CSS on the child
// class (typically display:inline-block) keeps line breaks off chunk
// interiors.
package render

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/cognicore/bunsetsu/pkg/bunsetsu/compose"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/internalerr"
)

// DefaultClass is applied when the caller supplies no class attribute.
const DefaultClass = "chunk"

// attrName matches well-formed markup attribute identifiers.
var attrName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.:-]*$`)

// Options tunes serialization.
type Options struct {
	// UseWBR emits chunk texts separated by <wbr> tags instead of
	// wrapping each chunk in its own element.
	UseWBR bool
	// InlineStyle appends display:inline-block to the style attribute
	// of each chunk element.
	InlineStyle bool
}

// HTML renders chunks with the given attributes and default options.
func HTML(chunks []compose.Chunk, attributes map[string]string) (string, error) {
	return HTMLWithOptions(chunks, attributes, Options{})
}

// HTMLWithOptions renders chunks into a single root span. Chunk text and
// attribute values are escaped; attribute names must be well-formed
// identifiers or the call fails with internalerr.ErrInvalidAttribute.
// Whitespace between chunks is emitted literally from each chunk's
// trailing-space flag.
func HTMLWithOptions(chunks []compose.Chunk, attributes map[string]string, opts Options) (string, error) {
	attrs, err := normalizeAttributes(attributes, opts)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("<span>")
	if opts.UseWBR {
		for i, c := range chunks {
			if i > 0 && !chunks[i-1].TrailingSpace {
				b.WriteString("<wbr>")
			}
			b.WriteString(html.EscapeString(c.Text))
			if c.TrailingSpace && i < len(chunks)-1 {
				b.WriteByte(' ')
			}
		}
	} else {
		attrStr := serializeAttributes(attrs)
		for i, c := range chunks {
			b.WriteString("<span")
			b.WriteString(attrStr)
			b.WriteByte('>')
			b.WriteString(html.EscapeString(c.Text))
			b.WriteString("</span>")
			if c.TrailingSpace && i < len(chunks)-1 {
				b.WriteByte(' ')
			}
		}
	}
	b.WriteString("</span>")
	return b.String(), nil
}

// normalizeAttributes validates names, defaults the class, and applies
// the inline-style option. The input map is not modified.
func normalizeAttributes(attributes map[string]string, opts Options) (map[string]string, error) {
	attrs := make(map[string]string, len(attributes)+1)
	for name, val := range attributes {
		if !attrName.MatchString(name) {
			return nil, fmt.Errorf("%w: %q is not a valid attribute name", internalerr.ErrInvalidAttribute, name)
		}
		attrs[name] = val
	}
	if _, ok := attrs["class"]; !ok {
		attrs["class"] = DefaultClass
	}
	if opts.InlineStyle {
		style := attrs["style"]
		if style != "" && !strings.HasSuffix(style, ";") {
			style += ";"
		}
		attrs["style"] = style + "display:inline-block"
	}
	return attrs, nil
}

// serializeAttributes emits attributes in sorted order so rendering is
// deterministic.
func serializeAttributes(attrs map[string]string) string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(attrs[name]))
		b.WriteByte('"')
	}
	return b.String()
}
