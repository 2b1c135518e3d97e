package html

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Builder accumulates escaped markup for a component.
type Builder struct {
	strings.Builder
}

// Raw writes trusted markup.
func (b *Builder) Raw(s string) {
	b.WriteString(s)
}

// Text writes escaped text.
func (b *Builder) Text(s string) {
	b.WriteString(templ.EscapeString(s))
}

// Fmt formats markup. Strings, URLs, Stringers and errors are escaped;
// numbers and bools are written as-is. Attributes holding a link target must
// receive a URL value so unsafe schemes are neutralised.
func (b *Builder) Fmt(format string, args ...any) {
	for i, a := range args {
		switch v := a.(type) {
		case string:
			args[i] = templ.EscapeString(v)
		case templ.SafeURL:
			args[i] = templ.EscapeString(string(v))
		case error:
			args[i] = templ.EscapeString(v.Error())
		case fmt.Stringer:
			args[i] = templ.EscapeString(v.String())
		}
	}
	fmt.Fprintf(b, format, args...)
}

// URL sanitizes a link target for an href, src or action attribute.
// javascript: and other unsafe schemes become templ's inert failure URL.
func URL(s string) templ.SafeURL {
	return templ.URL(s)
}

// Flash renders the ?status= and ?error= banners.
func (b *Builder) Flash(status, errMsg string) {
	if status != "" {
		b.Fmt(`<div class="flash flash-ok" role="status">%s</div>`, status)
	}
	if errMsg != "" {
		b.Fmt(`<div class="flash flash-error" role="alert">%s</div>`, errMsg)
	}
}

// Fragment turns a builder function into a templ component.
func Fragment(fn func(b *Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b Builder
		fn(&b)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
