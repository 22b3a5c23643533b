package modes

import (
	"fmt"

	"github.com/dshills/gameflow/internal/flow"
	"github.com/dshills/gameflow/internal/renderer/core"
)

// GameOver shows the result of the last round and keeps the best score.
type GameOver struct {
	env    *Env
	req    flow.Requester
	score  int
	best   int
	reason string
	record bool
}

// NewGameOver reads the round result from the carry store.
func NewGameOver(env *Env, r flow.Requester) *GameOver {
	c := r.Carry()
	g := &GameOver{
		env:    env,
		req:    r,
		score:  flow.GetOr(c, ScoreKey, 0),
		best:   flow.GetOr(c, BestKey, 0),
		reason: flow.GetOr(c, ReasonKey, ""),
	}
	if g.score > g.best {
		g.best = g.score
		g.record = true
		flow.Set(c, BestKey, g.best)
	}
	return g
}

// Name implements flow.Named.
func (g *GameOver) Name() string { return GameOverName }

// Best returns the best score including this round.
func (g *GameOver) Best() int { return g.best }

// Update retries on confirm, returns to the title on back and quits on quit.
func (g *GameOver) Update(f flow.Frame) (flow.Transition, error) {
	in := g.env.Snapshot(f)
	var target string
	switch {
	case in.TakeAction("quit"):
		return flow.Quit(), nil
	case in.TakeAction("confirm"):
		target = PlayName
	case in.TakeAction("back"):
		target = TitleName
	default:
		return flow.Continue(), nil
	}
	next, err := g.env.Build(target, g.req)
	if err != nil {
		return flow.Continue(), err
	}
	return flow.ChangeTo(next), nil
}

// Render draws the result screen.
func (g *GameOver) Render(f flow.Frame) error {
	s := g.env.Surface
	g.env.Clear()
	_, h := s.Size()
	mid := h / 2

	title := "GAME OVER"
	if g.reason == "time" {
		title = "TIME UP"
	}
	core.DrawCentered(s, mid-2, title, g.env.Accent().Bold())
	core.DrawCentered(s, mid, fmt.Sprintf("score %d", g.score), g.env.Base())

	best := fmt.Sprintf("best %d", g.best)
	style := g.env.Muted()
	if g.record {
		best = "new best " + fmt.Sprint(g.best)
		style = g.env.Accent()
	}
	core.DrawCentered(s, mid+1, best, style)
	core.DrawCentered(s, h-1, "enter retries  esc title  q quits", g.env.Muted())
	return nil
}

// Close drops the round result; the best score stays in the carry store.
func (g *GameOver) Close() error {
	c := g.req.Carry()
	c.Delete(ScoreKey.Name())
	c.Delete(ReasonKey.Name())
	return nil
}
