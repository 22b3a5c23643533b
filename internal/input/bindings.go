package input

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dshills/gameflow/internal/renderer/backend"
)

// Trigger is a single key press: a special key, or a printable rune.
type Trigger struct {
	Key  backend.Key
	Rune rune
}

// KeyTrigger returns a trigger for a special key.
func KeyTrigger(k backend.Key) Trigger {
	return Trigger{Key: k}
}

// RuneTrigger returns a trigger for a printable character.
func RuneTrigger(r rune) Trigger {
	return Trigger{Key: backend.KeyRune, Rune: r}
}

// ParseTrigger parses a key name ("enter", "up", "ctrl+c"), "space", or a
// single character.
func ParseTrigger(s string) (Trigger, error) {
	if s == "space" {
		return RuneTrigger(' '), nil
	}
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		return RuneTrigger(r), nil
	}
	if k, ok := backend.ParseKey(strings.ToLower(s)); ok && k != backend.KeyRune && k != backend.KeyNone {
		return KeyTrigger(k), nil
	}
	return Trigger{}, fmt.Errorf("unknown key %q", s)
}

// Matches reports whether ev is a press of t.
func (t Trigger) Matches(ev backend.Event) bool {
	if ev.Type != backend.EventKey || ev.Key != t.Key {
		return false
	}
	return t.Key != backend.KeyRune || ev.Rune == t.Rune
}

func (t Trigger) String() string {
	if t.Key == backend.KeyRune {
		if t.Rune == ' ' {
			return "space"
		}
		return string(t.Rune)
	}
	return t.Key.String()
}

// Bindings maps action names to the triggers that fire them.
type Bindings struct {
	actions map[string][]Trigger
}

// DefaultBindings returns the builtin action bindings.
func DefaultBindings() *Bindings {
	return &Bindings{actions: map[string][]Trigger{
		"confirm": {KeyTrigger(backend.KeyEnter), RuneTrigger(' ')},
		"back":    {KeyTrigger(backend.KeyEscape)},
		"quit":    {RuneTrigger('q'), KeyTrigger(backend.KeyCtrlC)},
		"up":      {KeyTrigger(backend.KeyUp), RuneTrigger('k')},
		"down":    {KeyTrigger(backend.KeyDown), RuneTrigger('j')},
		"left":    {KeyTrigger(backend.KeyLeft), RuneTrigger('h')},
		"right":   {KeyTrigger(backend.KeyRight), RuneTrigger('l')},
	}}
}

// ParseBindings builds bindings from action names to key names, layered on
// the defaults. An action given an empty list is unbound.
func ParseBindings(raw map[string][]string) (*Bindings, error) {
	b := DefaultBindings()
	for action, keys := range raw {
		triggers := make([]Trigger, 0, len(keys))
		for _, k := range keys {
			t, err := ParseTrigger(k)
			if err != nil {
				return nil, fmt.Errorf("binding %s: %w", action, err)
			}
			triggers = append(triggers, t)
		}
		b.Bind(action, triggers...)
	}
	return b, nil
}

// Bind replaces the triggers of action.
func (b *Bindings) Bind(action string, triggers ...Trigger) {
	if len(triggers) == 0 {
		delete(b.actions, action)
		return
	}
	b.actions[action] = triggers
}

// Triggers returns the triggers bound to action.
func (b *Bindings) Triggers(action string) []Trigger {
	return b.actions[action]
}

// Actions returns the bound action names in sorted order.
func (b *Bindings) Actions() []string {
	names := make([]string, 0, len(b.actions))
	for name := range b.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
