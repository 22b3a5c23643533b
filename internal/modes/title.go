package modes

import (
	"fmt"

	"github.com/dshills/gameflow/internal/flow"
	"github.com/dshills/gameflow/internal/renderer/core"
)

// Title is the menu shown at startup.
type Title struct {
	env   *Env
	req   flow.Requester
	blink bool
}

// NewTitle creates the title mode.
func NewTitle(env *Env, r flow.Requester) *Title {
	env.Log().Debug("title: enter")
	return &Title{env: env, req: r}
}

// Name implements flow.Named.
func (t *Title) Name() string { return TitleName }

// Update starts a round on confirm and quits on quit or back.
func (t *Title) Update(f flow.Frame) (flow.Transition, error) {
	in := t.env.Snapshot(f)
	switch {
	case in.TakeAction("confirm"):
		next, err := t.env.Build(PlayName, t.req)
		if err != nil {
			return flow.Continue(), err
		}
		return flow.ChangeTo(next), nil
	case in.TakeAction("quit"), in.TakeAction("back"):
		return flow.Quit(), nil
	}
	t.blink = f.Index/15%2 == 0
	return flow.Continue(), nil
}

// Render draws the menu.
func (t *Title) Render(f flow.Frame) error {
	t.env.Clear()
	_, h := t.env.Surface.Size()
	mid := h / 2

	core.DrawCentered(t.env.Surface, mid-2, "G A M E F L O W", t.env.Accent().Bold())
	if t.blink {
		core.DrawCentered(t.env.Surface, mid, "press enter", t.env.Base())
	}
	if best, ok := flow.Get(t.req.Carry(), BestKey); ok {
		core.DrawCentered(t.env.Surface, mid+2, fmt.Sprintf("best %d", best), t.env.Muted())
	}
	core.DrawCentered(t.env.Surface, h-1, "q quits", t.env.Muted())
	return nil
}

// Close implements flow.Mode.
func (t *Title) Close() error {
	t.env.Log().Debug("title: exit")
	return nil
}
