// Package planner produces single-shot itinerary plans through the
// completion collaborator, as baselines against negotiated agreements.
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/parleyhq/parley/internal/completion"
	"github.com/parleyhq/parley/internal/wishes"
)

const fullSystem = "あなたは旅行プランナー。\n" +
	"- 2泊3日の国内旅行案を、4名の希望の交差を最大化する形で一本化する\n" +
	"- 出力は自然言語のみ（文章形式）\n" +
	"- 最終的に 行き先、予算、宿泊のスタイル、主なアクティビティ、簡単な日程 をまとめる\n" +
	"- 日ごと（1/2/3日目）で書く\n"

const publicOnlySystem = "あなたは旅行プランナー。\n" +
	"- 2泊3日の国内旅行案を、4名の希望の交差を最大化する形で一本化\n" +
	"- 出力は自然言語のみ。1〜3日目と要点（行き先/予算/宿/主アクティビティ）を含める\n"

// Planner generates plans from a wish set in one completion call.
type Planner struct {
	client completion.Client
	model  string
}

// New creates a planner using the given collaborator and model.
func New(client completion.Client, model string) *Planner {
	return &Planner{client: client, model: model}
}

// Plan is one generated itinerary with its generation time.
type Plan struct {
	Text    string
	Elapsed time.Duration
}

// Full generates a plan with complete visibility: public and private
// wishes of every person are handed to the collaborator.
func (p *Planner) Full(ctx context.Context, set wishes.Set) (Plan, error) {
	prompt := "次の4名の希望（公開/非公開）を統合して最終合意案を1本化:\n\n" + wishes.FullBlock(set)
	return p.generate(ctx, fullSystem, prompt)
}

// PublicOnly generates a plan from public wishes alone; private
// constraints are withheld.
func (p *Planner) PublicOnly(ctx context.Context, set wishes.Set) (Plan, error) {
	prompt := "次の4名の希望を前提に、2泊3日の合意案を1本化:\n\n" + wishes.PublicBlock(set)
	return p.generate(ctx, publicOnlySystem, prompt)
}

func (p *Planner) generate(ctx context.Context, system, prompt string) (Plan, error) {
	start := time.Now()
	text, err := p.client.Complete(ctx, completion.Request{
		Model:    p.model,
		System:   system,
		Messages: []completion.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return Plan{}, fmt.Errorf("generate plan: %w", err)
	}
	return Plan{Text: text, Elapsed: time.Since(start)}, nil
}
