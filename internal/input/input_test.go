package input

import (
	"reflect"
	"testing"
	"time"

	"github.com/dshills/gameflow/internal/renderer/backend"
)

func TestQueuePushDrain(t *testing.T) {
	q := NewQueue(2)

	if !q.Push(backend.RuneEvent('a')) || !q.Push(backend.RuneEvent('b')) {
		t.Fatal("Push() into empty queue failed")
	}
	if q.Push(backend.RuneEvent('c')) {
		t.Error("Push() into full queue should report false")
	}

	events := q.Drain()
	if len(events) != 2 || events[0].Rune != 'a' || events[1].Rune != 'b' {
		t.Errorf("Drain() = %+v", events)
	}
	if len(q.Drain()) != 0 {
		t.Error("second Drain() should be empty")
	}

	received, dropped := q.Stats()
	if received != 3 || dropped != 1 {
		t.Errorf("Stats() = %d, %d", received, dropped)
	}
}

func TestQueueFrameLatch(t *testing.T) {
	q := NewQueue(0)
	q.Push(backend.KeyEvent(backend.KeyEnter))

	first := q.Frame(1)
	q.Push(backend.KeyEvent(backend.KeyUp))
	if q.Frame(1) != first {
		t.Error("Frame() should return the same snapshot within a frame")
	}
	if first.Len() != 1 {
		t.Errorf("frame 1 events = %d", first.Len())
	}

	second := q.Frame(2)
	if second.Len() != 1 || !second.Pressed(KeyTrigger(backend.KeyUp)) {
		t.Errorf("frame 2 events = %+v", second.Events())
	}
}

func TestQueueStartStop(t *testing.T) {
	b := backend.NewNullBackend(1, 1)
	q := NewQueue(8)
	q.Start(b)

	_ = b.PostEvent(backend.RuneEvent('x'))

	deadline := time.After(time.Second)
	var got []backend.Event
	for len(got) == 0 {
		select {
		case <-deadline:
			t.Fatal("event never reached the queue")
		default:
		}
		got = q.Drain()
		time.Sleep(time.Millisecond)
	}
	if got[0].Rune != 'x' {
		t.Errorf("event = %+v", got[0])
	}

	q.Stop()
	q.Stop()
	b.Shutdown()

	waited := make(chan struct{})
	go func() {
		q.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("polling goroutine did not exit")
	}
}

func TestQueueRestart(t *testing.T) {
	b := backend.NewNullBackend(1, 1)
	q := NewQueue(8)

	for session := 1; session <= 2; session++ {
		if err := b.Init(); err != nil {
			t.Fatal(err)
		}
		q.Start(b)
		if s := q.Frame(1); s.Len() != 0 {
			t.Fatalf("session %d: stale snapshot with %d events", session, s.Len())
		}
		if err := b.PostEvent(backend.RuneEvent('x')); err != nil {
			t.Fatalf("session %d: PostEvent() = %v", session, err)
		}

		deadline := time.After(time.Second)
		for len(q.Drain()) == 0 {
			select {
			case <-deadline:
				t.Fatalf("session %d: event never reached the queue", session)
			default:
			}
			time.Sleep(time.Millisecond)
		}

		q.Stop()
		b.Shutdown()
		q.Wait()
	}
	if received, _ := q.Stats(); received != 2 {
		t.Errorf("received = %d, expected 2", received)
	}
}

func TestSnapshotTake(t *testing.T) {
	s := NewSnapshot([]backend.Event{
		backend.KeyEvent(backend.KeyEnter),
		backend.RuneEvent('a'),
		backend.KeyEvent(backend.KeyEnter),
		{Type: backend.EventResize, Width: 80, Height: 24},
	}, nil)

	enter := KeyTrigger(backend.KeyEnter)
	if !s.Take(enter) || !s.Take(enter) {
		t.Fatal("expected two enter presses")
	}
	if s.Take(enter) || s.Pressed(enter) {
		t.Error("enter presses should be consumed")
	}
	if s.Text() != "a" {
		t.Errorf("Text() = %q", s.Text())
	}
	if w, h, ok := s.Resize(); !ok || w != 80 || h != 24 {
		t.Errorf("Resize() = %d, %d, %v", w, h, ok)
	}
}

func TestSnapshotActions(t *testing.T) {
	s := NewSnapshot([]backend.Event{backend.RuneEvent(' '), backend.RuneEvent('q')}, DefaultBindings())

	if !s.Action("confirm") || !s.Action("quit") || s.Action("back") {
		t.Error("Action() mismatch")
	}
	if !s.TakeAction("confirm") || s.TakeAction("confirm") {
		t.Error("TakeAction() should consume once")
	}
	if s.Text() != "q" {
		t.Errorf("Text() = %q", s.Text())
	}
	if s.Action("missing") {
		t.Error("unbound action should never fire")
	}
}

func TestParseTrigger(t *testing.T) {
	tests := []struct {
		in      string
		want    Trigger
		wantErr bool
	}{
		{"enter", KeyTrigger(backend.KeyEnter), false},
		{"UP", KeyTrigger(backend.KeyUp), false},
		{"ctrl+c", KeyTrigger(backend.KeyCtrlC), false},
		{"space", RuneTrigger(' '), false},
		{"x", RuneTrigger('x'), false},
		{"é", RuneTrigger('é'), false},
		{"rune", Trigger{}, true},
		{"banana", Trigger{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTrigger(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTrigger(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseTrigger(%q) = %v, expected %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseBindings(t *testing.T) {
	b, err := ParseBindings(map[string][]string{
		"confirm": {"x"},
		"quit":    {},
		"fire":    {"f", "space"},
	})
	if err != nil {
		t.Fatalf("ParseBindings() error = %v", err)
	}

	if got := b.Triggers("confirm"); !reflect.DeepEqual(got, []Trigger{RuneTrigger('x')}) {
		t.Errorf("confirm = %v", got)
	}
	if len(b.Triggers("quit")) != 0 {
		t.Error("quit should be unbound")
	}
	if len(b.Triggers("up")) == 0 {
		t.Error("defaults should remain")
	}
	if got := b.Triggers("fire")[1].String(); got != "space" {
		t.Errorf("fire[1] = %q", got)
	}

	if _, err := ParseBindings(map[string][]string{"bad": {"nope"}}); err == nil {
		t.Error("expected error for unknown key")
	}
}
