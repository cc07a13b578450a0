package templates

import (
	"fmt"
	"strings"
)

// ComponentType is the tagged variant for template components. Components are
// processed through an explicit dispatch table keyed by this type so a new
// variant fails loudly instead of silently falling through string branches.
type ComponentType int

const (
	ComponentHeader ComponentType = iota
	ComponentBody
	ComponentFooter
	ComponentButtons
)

var componentNames = map[ComponentType]string{
	ComponentHeader:  "HEADER",
	ComponentBody:    "BODY",
	ComponentFooter:  "FOOTER",
	ComponentButtons: "BUTTONS",
}

// String returns the provider wire name for the component type.
func (t ComponentType) String() string {
	if name, ok := componentNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ComponentType(%d)", int(t))
}

// ParseComponentType maps a provider component name to its variant.
func ParseComponentType(raw string) (ComponentType, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "HEADER":
		return ComponentHeader, nil
	case "BODY":
		return ComponentBody, nil
	case "FOOTER":
		return ComponentFooter, nil
	case "BUTTONS":
		return ComponentButtons, nil
	default:
		return 0, fmt.Errorf("unknown component type %q", raw)
	}
}

// MarshalText implements encoding.TextMarshaler for JSON columns.
func (t ComponentType) MarshalText() ([]byte, error) {
	name, ok := componentNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown component type %d", int(t))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for JSON columns.
func (t *ComponentType) UnmarshalText(data []byte) error {
	parsed, err := ParseComponentType(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Component is one structural block of a template snapshot.
type Component struct {
	Type    ComponentType `json:"type"`
	Format  string        `json:"format,omitempty"`  // header only: TEXT, IMAGE, VIDEO, DOCUMENT
	Text    string        `json:"text,omitempty"`    // header TEXT, body, footer
	MediaID string        `json:"mediaId,omitempty"` // header media id from template sync
	Buttons []ButtonSpec  `json:"buttons,omitempty"` // buttons component only
}

// ButtonSpec is one button inside a BUTTONS component. The URL may contain a
// single {{key}} placeholder the builder substitutes a destination link into.
type ButtonSpec struct {
	Index int    `json:"index"`
	Type  string `json:"type"` // URL, QUICK_REPLY
	Text  string `json:"text"`
	URL   string `json:"url,omitempty"`
}
