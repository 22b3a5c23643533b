package flow

import (
	"errors"
	"reflect"
	"testing"
)

func TestRegistry_Build(t *testing.T) {
	j := &journal{}
	r := NewRegistry()
	r.Register("title", factoryFor(j, "title", nil))
	r.Register("play", factoryFor(j, "play", nil))

	if !r.Has("title") || r.Has("missing") {
		t.Error("Has() mismatch")
	}
	if got := r.Names(); !reflect.DeepEqual(got, []string{"play", "title"}) {
		t.Errorf("Names() = %v", got)
	}

	m, err := r.Build("play", nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if ModeName(m) != "play" {
		t.Errorf("ModeName() = %q", ModeName(m))
	}
}

func TestRegistry_Errors(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry()
	r.Register("broken", func(Requester) (Mode, error) { return nil, boom })
	r.Register("empty", func(Requester) (Mode, error) { return nil, nil })
	r.Register("nilfactory", nil)

	tests := []struct {
		name string
		want error
	}{
		{"missing", ErrUnknownMode},
		{"nilfactory", ErrUnknownMode},
		{"broken", boom},
		{"empty", ErrNilMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := r.Build(tt.name, nil)
			if m != nil {
				t.Error("expected nil mode")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, expected %v", err, tt.want)
			}
		})
	}
}

func TestRegistry_ReplaceFactory(t *testing.T) {
	j := &journal{}
	r := NewRegistry()
	r.Register("a", factoryFor(j, "first", nil))
	r.Register("a", factoryFor(j, "second", nil))

	m, err := r.Build("a", nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if ModeName(m) != "second" {
		t.Errorf("ModeName() = %q, expected second", ModeName(m))
	}
}

func TestRegistry_DrivesController(t *testing.T) {
	j := &journal{}
	r := NewRegistry()
	r.Register("a", factoryFor(j, "a", func(m *testMode) {
		m.onUpdate = func(m *testMode, _ Frame) (Transition, error) {
			next, err := r.Build("b", m.req)
			if err != nil {
				return Continue(), err
			}
			m.req.RequestChange(next)
			return Continue(), nil
		}
	}))
	r.Register("b", factoryFor(j, "b", func(m *testMode) { m.onUpdate = quitAt(1) }))

	initial, _ := r.Factory("a")
	c, err := New(initial)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := c.Run(t.Context()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if want := "a.new a.update#1 b.new a.close b.update#1 b.close"; j.String() != want {
		t.Errorf("journal = %s, expected %s", j, want)
	}
}
