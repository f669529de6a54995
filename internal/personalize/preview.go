package personalize

import (
	"fmt"
	"strings"
	"sync"

	"github.com/osteele/liquid"

	"github.com/emailcraft/studio/internal/domain"
)

// Previewer renders campaign drafts with Liquid for the builder's preview
// pane. It accepts the same {{firstName}} style tokens as dispatch but also
// supports filters, so marketers can try "{{ firstName | default: \"there\" }}"
// before committing to a send. Dispatch itself never goes through Liquid.
type Previewer struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewPreviewer creates a preview renderer with the builder's custom filters.
func NewPreviewer() *Previewer {
	p := &Previewer{engine: liquid.NewEngine()}
	p.registerFilters()
	return p
}

func (p *Previewer) registerFilters() {
	// Fallback value: {{ firstName | default: "there" }}
	p.engine.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil {
			return defaultVal
		}
		strVal := fmt.Sprintf("%v", value)
		if strVal == "" || strVal == "<nil>" {
			return defaultVal
		}
		return value
	})

	// Extract domain from email: {{ email | email_domain }}
	p.engine.RegisterFilter("email_domain", func(email string) string {
		parts := strings.Split(email, "@")
		if len(parts) == 2 {
			return parts[1]
		}
		return ""
	})

	// Mask email for screenshots: {{ email | mask_email }}
	p.engine.RegisterFilter("mask_email", func(email string) string {
		parts := strings.Split(email, "@")
		if len(parts) != 2 {
			return email
		}
		local := parts[0]
		if len(local) <= 2 {
			return local + "***@" + parts[1]
		}
		return local[:2] + "***@" + parts[1]
	})
}

// Render renders a template against a sample contact. cacheKey should be
// stable per campaign field (e.g. "<campaignID>:subject") so repeated
// previews reuse the parsed template; pass "" to skip caching. On parse or
// render errors the original template string is returned alongside the
// error so the preview pane can still show something.
func (p *Previewer) Render(cacheKey, templateStr string, c domain.Contact) (string, error) {
	ctx := contactBindings(c)

	if cacheKey != "" {
		if cached, ok := p.cache.Load(cacheKey); ok {
			return cached.(*liquid.Template).RenderString(ctx)
		}
	}

	tpl, err := p.engine.ParseString(templateStr)
	if err != nil {
		return templateStr, err
	}
	if cacheKey != "" {
		p.cache.Store(cacheKey, tpl)
	}

	out, err := tpl.RenderString(ctx)
	if err != nil {
		return templateStr, err
	}
	return out, nil
}

// Parse compiles a template and reports syntax errors without rendering.
func (p *Previewer) Parse(templateStr string) error {
	_, err := p.engine.ParseString(templateStr)
	return err
}

// ClearCache drops every cached template, e.g. after a campaign edit. Safe
// to call while renders are in flight; an in-flight render may still use the
// template it already loaded.
func (p *Previewer) ClearCache() {
	p.cache.Range(func(key, _ interface{}) bool {
		p.cache.Delete(key)
		return true
	})
}

// contactBindings exposes the contact under the same names the dispatch
// tokens use, so a template previews the way it will send.
func contactBindings(c domain.Contact) map[string]interface{} {
	return map[string]interface{}{
		"firstName": c.FirstName,
		"lastName":  c.LastName,
		"email":     c.Email,
		"company":   c.Company,
		"position":  c.Position,
	}
}
