// Package inject delivers a saved note's summary into the active
// application using robotgo keystrokes or a clipboard paste.
package inject

import (
	"fmt"
	"strings"

	"github.com/go-vgo/robotgo"
)

// Injector sends summary text to the focused application.
type Injector struct {
	method string // "none", "type" or "paste"
	typeFn func(string)
	paste  func(string) error
}

// NewInjector creates an Injector with the given method. "none" and
// unknown methods make Inject a no-op.
func NewInjector(method string) *Injector {
	return &Injector{method: method, typeFn: typeText, paste: pasteText}
}

// Method returns the configured delivery method.
func (inj *Injector) Method() string {
	return inj.method
}

// FormatSummary renders summary lines as a bullet list, one per line.
func FormatSummary(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(line)
	}
	return b.String()
}

// InjectSummary formats lines and delivers them. An empty summary is
// not injected.
func (inj *Injector) InjectSummary(lines []string) error {
	return inj.Inject(FormatSummary(lines))
}

// Inject sends text to the active application using the configured method.
func (inj *Injector) Inject(text string) error {
	if text == "" {
		return nil
	}

	switch inj.method {
	case "type":
		inj.typeFn(text)
		return nil
	case "paste":
		return inj.paste(text)
	default:
		return nil
	}
}

// typeText simulates individual keystrokes. Slower for long text but
// leaves the clipboard alone.
func typeText(text string) {
	robotgo.Type(text)
}

// pasteText puts text on the clipboard, pastes it with Cmd+V and then
// restores the previous clipboard contents on a best-effort basis.
func pasteText(text string) error {
	prev, _ := robotgo.ReadAll()

	if err := robotgo.WriteAll(text); err != nil {
		return fmt.Errorf("inject: write to clipboard: %w", err)
	}
	if err := robotgo.KeyTap("v", "cmd"); err != nil {
		return fmt.Errorf("inject: key tap cmd+v: %w", err)
	}

	_ = robotgo.WriteAll(prev)
	return nil
}
