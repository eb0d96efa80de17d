// ABOUTME: Reply rendering for Matrix
// ABOUTME: Builds the plain-text body and its goldmark HTML counterpart

package frontend

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/LainPM/Locust/internal/reply"
)

// renderReply flattens a reply into a markdown body and an HTML rendering
// of it. Fields become bolded "Name: value" lines; an image URL is
// appended as a plain link since the body must stand alone for clients
// that ignore formatting.
func renderReply(r *reply.Reply) (body, html string) {
	var b strings.Builder
	b.WriteString(r.Text)
	for _, f := range r.Fields {
		b.WriteString("\n")
		fmt.Fprintf(&b, "**%s:** %s", f.Name, f.Value)
	}
	if r.ImageURL != "" {
		b.WriteString("\n")
		b.WriteString(r.ImageURL)
	}
	body = b.String()
	if body == "" {
		return "", ""
	}

	var htmlBuf bytes.Buffer
	if err := goldmark.Convert([]byte(body), &htmlBuf); err != nil {
		// Plain body still goes out
		return body, ""
	}
	return body, strings.TrimSpace(htmlBuf.String())
}
