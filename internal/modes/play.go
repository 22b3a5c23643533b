package modes

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/dshills/gameflow/internal/flow"
	"github.com/dshills/gameflow/internal/renderer/core"
)

// Play field tuning.
const (
	spawnEvery    = 600 * time.Millisecond
	rowsPerSecond = 8.0
	minFieldRows  = 4
	laneWidth     = 4
)

type obstacle struct {
	lane int
	row  float64
}

// Play is a lane dodging round. The player moves between lanes while
// obstacles fall; the round ends on a crash or when time runs out.
type Play struct {
	env *Env
	req flow.Requester
	rng *rand.Rand

	lanes     int
	rows      int
	lane      int
	obstacles []obstacle
	elapsed   time.Duration
	untilNext time.Duration
	round     time.Duration
	score     int
}

// NewPlay creates a round sized to the surface.
func NewPlay(env *Env, r flow.Requester) *Play {
	lanes := env.Game.Lanes
	if lanes < 2 {
		lanes = 2
	}
	_, h := env.Surface.Size()
	rows := max(h-3, minFieldRows)

	p := &Play{
		env:       env,
		req:       r,
		rng:       env.rng(),
		lanes:     lanes,
		rows:      rows,
		lane:      lanes / 2,
		untilNext: spawnEvery,
		round:     time.Duration(env.Game.RoundSeconds) * time.Second,
	}
	rounds := flow.GetOr(r.Carry(), RoundsKey, 0)
	flow.Set(r.Carry(), RoundsKey, rounds+1)
	env.Log().Debug("play: round %d, %d lanes", rounds+1, lanes)
	return p
}

// Name implements flow.Named.
func (p *Play) Name() string { return PlayName }

// Score returns the obstacles dodged so far.
func (p *Play) Score() int { return p.score }

// Update moves the player and advances the field. A crash or the end of the
// round changes to gameover from inside the field helpers.
func (p *Play) Update(f flow.Frame) (flow.Transition, error) {
	in := p.env.Snapshot(f)
	if in.TakeAction("back") {
		next, err := p.env.Build(TitleName, p.req)
		if err != nil {
			return flow.Continue(), err
		}
		return flow.ChangeTo(next), nil
	}
	if in.TakeAction("left") && p.lane > 0 {
		p.lane--
	}
	if in.TakeAction("right") && p.lane < p.lanes-1 {
		p.lane++
	}

	if err := p.advance(f.Delta); err != nil {
		return flow.Continue(), err
	}
	return flow.Continue(), nil
}

func (p *Play) advance(dt time.Duration) error {
	p.elapsed += dt
	if err := p.fall(dt); err != nil {
		return err
	}
	p.spawn(dt)
	if p.round > 0 && p.elapsed >= p.round {
		return p.finish("time")
	}
	return nil
}

func (p *Play) fall(dt time.Duration) error {
	step := rowsPerSecond * dt.Seconds()
	kept := p.obstacles[:0]
	for _, o := range p.obstacles {
		from := o.row
		o.row += step
		if err := p.collide(o, from); err != nil {
			return err
		}
		if int(o.row) >= p.rows {
			p.score++
			continue
		}
		kept = append(kept, o)
	}
	p.obstacles = kept
	return nil
}

// collide ends the round when o reached or passed the player's row while
// falling from row from.
func (p *Play) collide(o obstacle, from float64) error {
	player := p.rows - 1
	if o.lane == p.lane && int(from) <= player && int(o.row) >= player {
		return p.finish("crash")
	}
	return nil
}

func (p *Play) spawn(dt time.Duration) {
	p.untilNext -= dt
	for p.untilNext <= 0 {
		p.obstacles = append(p.obstacles, obstacle{lane: p.rng.IntN(p.lanes)})
		p.untilNext += spawnEvery
	}
}

// finish records the result and hands over to gameover. It returns only
// when gameover cannot be built.
func (p *Play) finish(reason string) error {
	c := p.req.Carry()
	flow.Set(c, ScoreKey, p.score)
	flow.Set(c, ReasonKey, reason)
	next, err := p.env.Build(GameOverName, p.req)
	if err != nil {
		return err
	}
	p.env.Log().Info("play: round over (%s), score %d", reason, p.score)
	p.req.RequestChange(next)
	return nil
}

// Render draws the field and the status line.
func (p *Play) Render(f flow.Frame) error {
	s := p.env.Surface
	p.env.Clear()
	w, _ := s.Size()
	left := max((w-p.lanes*laneWidth)/2, 0)

	remaining := max(p.round-p.elapsed, 0)
	status := fmt.Sprintf("score %d  time %.1f", p.score, remaining.Seconds())
	core.DrawText(s, 0, 0, core.Truncate(status, w), p.env.Muted())

	sep := strings.Repeat(" ", laneWidth-1) + "|"
	for row := 0; row < p.rows; row++ {
		core.DrawText(s, left, row+1, strings.Repeat(sep, p.lanes), p.env.Muted())
	}
	for _, o := range p.obstacles {
		core.DrawText(s, left+o.lane*laneWidth+1, int(o.row)+1, "##", p.env.Base())
	}
	core.DrawText(s, left+p.lane*laneWidth+1, p.rows, "/\\", p.env.Accent().Bold())
	return nil
}

// Close implements flow.Mode.
func (p *Play) Close() error {
	p.obstacles = nil
	p.env.Log().Debug("play: exit after %s", p.elapsed)
	return nil
}
