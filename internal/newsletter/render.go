package newsletter

import (
	"fmt"

	"github.com/osteele/liquid"
)

// DefaultTemplate renders a heading, a paragraph and, when the newsletter
// has one, its image. Every value is HTML-escaped.
const DefaultTemplate = `<h1>{{ subject | escape }}</h1>` +
	`<p>{{ description | escape }}</p>` +
	`{% if image_url != "" %}<img src="{{ image_url | escape }}" alt="Newsletter Image" style="max-width: 100%;" />{% endif %}`

// Renderer turns a newsletter into its HTML email body. The template is
// parsed once and safe for concurrent use.
type Renderer struct {
	tpl *liquid.Template
}

// NewRenderer parses src, or DefaultTemplate when src is empty.
func NewRenderer(src string) (*Renderer, error) {
	if src == "" {
		src = DefaultTemplate
	}
	tpl, err := liquid.NewEngine().ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("parse newsletter template: %w", err)
	}
	return &Renderer{tpl: tpl}, nil
}

// Render returns the body for the given fields. The output depends only on
// its inputs.
func (r *Renderer) Render(subject, description, imageURL string) (string, error) {
	out, err := r.tpl.RenderString(liquid.Bindings{
		"subject":     subject,
		"description": description,
		"image_url":   imageURL,
	})
	if err != nil {
		return "", fmt.Errorf("render newsletter: %w", err)
	}
	return out, nil
}
