// Package board holds the optimistic state of a campaign's pipeline board.
//
// A Board keeps two copies of the cards: the snapshot last confirmed by the
// store and the local copy the user is dragging around. A drop writes the
// dragged card's stage through a StageWriter. Failures restore the snapshot.
package board

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/influencer-os/internal/model"
)

// ErrUnknownCard is returned when a drop names a card the board does not hold.
var ErrUnknownCard = eris.New("board: unknown card")

// Card is one assignment on the board.
type Card struct {
	InfluencerID  string      `json:"id"`
	AssignmentID  string      `json:"campaign_influencer_id"`
	Name          string      `json:"name"`
	Handle        *string     `json:"handle"`
	FollowerCount *int64      `json:"follower_count"`
	Rate          *float64    `json:"rate"`
	Deliverable   *string     `json:"deliverable"`
	PipelineStage model.Stage `json:"pipeline_stage"`
}

// Column is one fixed stage column.
type Column struct {
	Stage model.Stage `json:"stage"`
	Label string      `json:"label"`
	Cards []Card      `json:"cards"`
}

// StageWriter persists a single card's stage.
type StageWriter interface {
	WriteStage(ctx context.Context, assignmentID string, stage model.Stage) error
}

// StageWriterFunc adapts a function to StageWriter.
type StageWriterFunc func(ctx context.Context, assignmentID string, stage model.Stage) error

// WriteStage calls f.
func (f StageWriterFunc) WriteStage(ctx context.Context, assignmentID string, stage model.Stage) error {
	return f(ctx, assignmentID, stage)
}

// Config controls board behavior.
type Config struct {
	Writer StageWriter

	// OnStageChange is called after a successful write.
	OnStageChange func(assignmentID string, stage model.Stage)
}

// Board is safe for concurrent use. Boards in different sessions do not
// coordinate; the last write wins.
type Board struct {
	cfg Config

	mu       sync.Mutex
	snapshot []Card
	local    []Card
	active   string
}

// New creates a board over the given cards.
func New(cfg Config, cards []Card) *Board {
	b := &Board{cfg: cfg}
	b.Sync(cards)
	return b
}

// Sync replaces both the snapshot and the local state, e.g. after the
// caller reloads the campaign.
func (b *Board) Sync(cards []Card) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshot = slices.Clone(cards)
	b.local = slices.Clone(cards)
	b.active = ""
}

// Snapshot returns the last confirmed cards.
func (b *Board) Snapshot() []Card {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.snapshot)
}

// Cards returns the local cards, including uncommitted moves.
func (b *Board) Cards() []Card {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.local)
}

// Active returns the id of the card being dragged, if any.
func (b *Board) Active() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// Columns groups the local cards into the seven stage columns in order.
// Cards with an unknown stage are not shown.
func (b *Board) Columns() []Column {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Group(b.local)
}

// Group buckets cards by stage, preserving card order within a column.
func Group(cards []Card) []Column {
	cols := make([]Column, len(model.Stages))
	for i, st := range model.Stages {
		cols[i] = Column{Stage: st, Label: st.Label(), Cards: []Card{}}
	}
	for _, c := range cards {
		if i := c.PipelineStage.Index(); i >= 0 {
			cols[i].Cards = append(cols[i].Cards, c)
		}
	}
	return cols
}

// DragStart marks id as the card being dragged. It reports whether the card exists.
func (b *Board) DragStart(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.indexOf(id) < 0 {
		return false
	}
	b.active = id
	return true
}

// DragOver moves the active card locally. overID is either a stage key, in
// which case the card takes that stage, or another card's id, in which case
// it takes that card's stage. Unknown targets are ignored.
func (b *Board) DragOver(activeID, overID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dragOver(activeID, overID)
}

func (b *Board) dragOver(activeID, overID string) {
	i := b.indexOf(activeID)
	if i < 0 || overID == "" {
		return
	}
	if st := model.Stage(overID); st.Valid() {
		b.local[i].PipelineStage = st
		return
	}
	if j := b.indexOf(overID); j >= 0 {
		b.local[i].PipelineStage = b.local[j].PipelineStage
	}
}

// Drop ends a drag. An empty overID cancels: local state goes back to the
// snapshot and nothing is written. Otherwise the card's local stage is
// written. A failed write restores the snapshot and returns the error; a
// successful one advances the snapshot and fires OnStageChange.
func (b *Board) Drop(ctx context.Context, activeID, overID string) error {
	b.mu.Lock()
	b.active = ""
	if overID == "" {
		b.local = slices.Clone(b.snapshot)
		b.mu.Unlock()
		return nil
	}

	b.dragOver(activeID, overID)
	i := b.indexOf(activeID)
	if i < 0 {
		b.mu.Unlock()
		return eris.Wrapf(ErrUnknownCard, "board: drop %s", activeID)
	}
	stage := b.local[i].PipelineStage
	b.mu.Unlock()

	if b.cfg.Writer == nil {
		return eris.New("board: no stage writer configured")
	}
	if err := b.cfg.Writer.WriteStage(ctx, activeID, stage); err != nil {
		b.mu.Lock()
		b.local = slices.Clone(b.snapshot)
		b.mu.Unlock()
		return eris.Wrapf(err, "board: write stage for %s", activeID)
	}

	b.mu.Lock()
	if j := indexOf(b.snapshot, activeID); j >= 0 {
		b.snapshot[j].PipelineStage = stage
	}
	b.mu.Unlock()

	if b.cfg.OnStageChange != nil {
		b.cfg.OnStageChange(activeID, stage)
	}
	return nil
}

// Find returns the local card with the given assignment id.
func (b *Board) Find(id string) (Card, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(id); i >= 0 {
		return b.local[i], true
	}
	return Card{}, false
}

func (b *Board) indexOf(id string) int {
	return indexOf(b.local, id)
}

func indexOf(cards []Card, id string) int {
	return slices.IndexFunc(cards, func(c Card) bool { return c.AssignmentID == id })
}

// FormatFollowers renders a follower count as 1.2M, 15.0K or a plain number.
func FormatFollowers(n *int64) string {
	if n == nil || *n == 0 {
		return "-"
	}
	switch v := *n; {
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(v)/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK", float64(v)/1_000)
	default:
		return fmt.Sprintf("%d", v)
	}
}
