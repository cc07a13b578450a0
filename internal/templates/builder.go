package templates

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"shopnotify_backend/platform/apperr"
)

// Content is the provider-ready message payload produced by the builder.
// Optional sections stay nil/empty; the shape itself is always valid.
type Content struct {
	Header  *HeaderContent  `json:"header,omitempty"`
	Body    BodyContent     `json:"body"`
	Footer  string          `json:"footer,omitempty"`
	Buttons []ButtonContent `json:"buttons,omitempty"`
}

// HeaderContent carries the resolved header block.
type HeaderContent struct {
	Format  string `json:"format"`
	Text    string `json:"text,omitempty"`
	MediaID string `json:"mediaId,omitempty"`
}

// BodyContent carries the example map the provider substitutes into the
// approved body text, keyed by variable name.
type BodyContent struct {
	Example map[string]string `json:"example"`
}

// ButtonContent is one dynamic button: the provider replaces the {{key}}
// placeholder in the approved button URL with Params[key].
type ButtonContent struct {
	Index  int               `json:"index"`
	Params map[string]string `json:"params"`
}

// ValueSource supplies the value for one template slot. Live dispatch wraps
// the variable mapper (total, always resolves); the manual test-send path
// uses LiteralValues, where a blank slot is a validation failure.
type ValueSource interface {
	Resolve(v Variable) (value string, ok bool)
}

// LiteralValues resolves slots from caller-supplied literals, keyed by
// variable name. Blank or absent values do not resolve.
type LiteralValues map[string]string

// Resolve implements ValueSource.
func (m LiteralValues) Resolve(v Variable) (string, bool) {
	value, ok := m[v.Name]
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

// BuildOptions carries the per-send inputs the template snapshot cannot know.
type BuildOptions struct {
	// HeaderMediaID overrides the snapshot's stored header media id when set.
	HeaderMediaID string
	// ButtonLink is the record-specific destination URL substituted into the
	// button placeholder (checkout recovery link, tracking link, action link).
	ButtonLink string
	// FallbackLink replaces ButtonLink when it is absent or malformed, so a
	// bad record degrades to a safe link instead of failing the build.
	FallbackLink string
}

const defaultFallbackLink = "https://wa.me"

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

type contentBuilder struct {
	content     Content
	varsByType  map[ComponentType][]Variable
	src         ValueSource
	opts        BuildOptions
	missing     []string
	missingSeen map[string]bool
	buttonsDone bool
}

// addMissing records an unresolved slot name once, even when a malformed
// snapshot repeats a component and the same slots are walked again.
func (b *contentBuilder) addMissing(name string) {
	if b.missingSeen[name] {
		return
	}
	if b.missingSeen == nil {
		b.missingSeen = map[string]bool{}
	}
	b.missingSeen[name] = true
	b.missing = append(b.missing, name)
}

// BuildContent walks the snapshot components in order and produces the
// provider payload. Optional sections (footer, buttons) never fail the build;
// with a LiteralValues source, unresolved header/body slots are rejected as a
// single validation error listing every blank variable name.
func BuildContent(components []Component, vars []Variable, src ValueSource, opts BuildOptions) (Content, error) {
	b := &contentBuilder{
		content:    Content{Body: BodyContent{Example: map[string]string{}}},
		varsByType: groupVariables(vars),
		src:        src,
		opts:       opts,
	}

	steps := map[ComponentType]func(*contentBuilder, Component){
		ComponentHeader:  (*contentBuilder).buildHeader,
		ComponentBody:    (*contentBuilder).buildBody,
		ComponentFooter:  (*contentBuilder).buildFooter,
		ComponentButtons: (*contentBuilder).buildButtons,
	}

	for _, component := range components {
		step, ok := steps[component.Type]
		if !ok {
			// Unknown component from a newer provider schema: skip, never fail.
			continue
		}
		step(b, component)
	}

	if len(b.missing) > 0 {
		sort.Strings(b.missing)
		return Content{}, apperr.Validation("missing template variable values").WithDetails(b.missing)
	}

	return b.content, nil
}

func (b *contentBuilder) buildHeader(component Component) {
	if b.content.Header != nil {
		return
	}

	header := &HeaderContent{Format: component.Format}

	if strings.EqualFold(component.Format, "TEXT") {
		header.Text = b.substituteInline(component.Text, b.varsByType[ComponentHeader])
	} else {
		header.MediaID = component.MediaID
		if b.opts.HeaderMediaID != "" {
			header.MediaID = b.opts.HeaderMediaID
		}
	}

	b.content.Header = header
}

func (b *contentBuilder) buildBody(component Component) {
	for _, v := range b.varsByType[ComponentBody] {
		value, ok := b.src.Resolve(v)
		if !ok {
			b.addMissing(v.Name)
			continue
		}
		b.content.Body.Example[v.Name] = value
	}
}

func (b *contentBuilder) buildFooter(component Component) {
	if b.content.Footer == "" {
		b.content.Footer = component.Text
	}
}

// buildButtons honors only the first non-empty BUTTONS block; duplicate
// blocks in a malformed snapshot are ignored.
func (b *contentBuilder) buildButtons(component Component) {
	if b.buttonsDone || len(component.Buttons) == 0 {
		return
	}
	b.buttonsDone = true

	for _, spec := range component.Buttons {
		if !strings.EqualFold(spec.Type, "URL") {
			continue
		}

		match := placeholderPattern.FindStringSubmatch(spec.URL)
		if match == nil {
			// Static URL button, nothing to substitute.
			continue
		}

		b.content.Buttons = append(b.content.Buttons, ButtonContent{
			Index:  spec.Index,
			Params: map[string]string{match[1]: b.buttonLink()},
		})
	}
}

func (b *contentBuilder) buttonLink() string {
	if isUsableLink(b.opts.ButtonLink) {
		return b.opts.ButtonLink
	}
	if isUsableLink(b.opts.FallbackLink) {
		return b.opts.FallbackLink
	}
	return defaultFallbackLink
}

// substituteInline resolves {{name}} placeholders directly inside header text.
func (b *contentBuilder) substituteInline(text string, vars []Variable) string {
	if len(vars) == 0 {
		return text
	}

	byName := make(map[string]Variable, len(vars))
	for _, v := range vars {
		byName[v.Name] = v
	}

	return placeholderPattern.ReplaceAllStringFunc(text, func(raw string) string {
		name := placeholderPattern.FindStringSubmatch(raw)[1]
		v, known := byName[name]
		if !known {
			return raw
		}
		value, ok := b.src.Resolve(v)
		if !ok {
			b.addMissing(v.Name)
			return raw
		}
		return value
	})
}

func groupVariables(vars []Variable) map[ComponentType][]Variable {
	grouped := make(map[ComponentType][]Variable, len(vars))
	for _, v := range vars {
		grouped[v.Component] = append(grouped[v.Component], v)
	}
	return grouped
}

func isUsableLink(link string) bool {
	if strings.TrimSpace(link) == "" {
		return false
	}
	parsed, err := url.Parse(link)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
