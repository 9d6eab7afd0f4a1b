// Package report measures how well plans satisfy the participants'
// wishes and assembles the experiment outputs: markdown reports, trial
// CSV rows, and the sqlite trial store.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/parleyhq/parley/internal/completion"
	"github.com/parleyhq/parley/internal/negotiation"
	"github.com/parleyhq/parley/internal/wishes"
)

// Visibility selects the public or private half of a wish split.
type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

// WishVerdict is the judgment for one wish against a plan.
type WishVerdict struct {
	Wish   string `json:"wish"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason"`
}

// VisibilityScore aggregates the verdicts of one person's public or
// private wishes.
type VisibilityScore struct {
	Total     int           `json:"total"`
	Satisfied int           `json:"satisfied"`
	Items     []WishVerdict `json:"items"`
}

// PersonScore holds both halves for one person.
type PersonScore struct {
	Public  VisibilityScore `json:"public"`
	Private VisibilityScore `json:"private"`
}

// Get returns the half selected by vis.
func (p PersonScore) Get(vis Visibility) VisibilityScore {
	if vis == Private {
		return p.Private
	}
	return p.Public
}

// Scores maps person names to their scores.
type Scores map[string]PersonScore

// EmptyScores builds an all-unsatisfied score set sized to the wishes,
// used when a plan was not produced or scoring failed.
func EmptyScores(set wishes.Set) Scores {
	out := Scores{}
	for name, sp := range set {
		out[name] = PersonScore{
			Public:  VisibilityScore{Total: len(sp.Public)},
			Private: VisibilityScore{Total: len(sp.Private)},
		}
	}
	return out
}

// AggregatePct sums satisfied/total over every person for one visibility
// and returns a rounded percentage. An empty denominator yields zero.
func AggregatePct(scores Scores, vis Visibility) int {
	var total, satisfied int
	for _, ps := range scores {
		vs := ps.Get(vis)
		total += vs.Total
		satisfied += vs.Satisfied
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(satisfied) / float64(total)))
}

const scorerSystem = "あなたは要件充足性の審査官です。" +
	"入力の『計画文』と『希望（公開/非公開）』を比較し、各希望が満たされるかを判定してください。" +
	"厳守: 出力はJSONのみ。人名キーの下に public/private を置き、" +
	"各々 items=[{wish, ok, reason}] とし、total と satisfied を数値で含める。" +
	"ok は true/false のみ。曖昧なら false として良い。"

const summarizerSystem = "あなたは議事録要約者です。以下の交渉ログから、" +
	"『行き先』『予算』『宿泊のスタイル』『主なアクティビティ』『1〜3日目の簡易行程』を中心に" +
	"できるだけ詳細に計画文としてまとめてください。" +
	"不明点は『不明』と書いて構いません。"

// Scorer judges wish satisfaction through the completion collaborator.
type Scorer struct {
	client completion.Client
	model  string
}

// NewScorer creates a scorer using the given collaborator and model.
func NewScorer(client completion.Client, model string) *Scorer {
	return &Scorer{client: client, model: model}
}

// ScoreWishes asks the collaborator to judge every wish against the plan
// text and returns the parsed verdicts. Missing totals are recomputed
// from the item lists, so a sloppy judgment still aggregates correctly.
func (s *Scorer) ScoreWishes(ctx context.Context, planText string, set wishes.Set) (Scores, error) {
	payload, err := json.Marshal(map[string]any{
		"plan":   planText,
		"wishes": set,
	})
	if err != nil {
		return nil, fmt.Errorf("encode scoring input: %w", err)
	}

	raw, err := s.client.Complete(ctx, completion.Request{
		Model:    s.model,
		System:   scorerSystem,
		Messages: []completion.Message{{Role: "user", Content: string(payload)}},
	})
	if err != nil {
		return nil, fmt.Errorf("score wishes: %w", err)
	}

	var scores Scores
	if err := json.Unmarshal([]byte(extractJSON(raw)), &scores); err != nil {
		return nil, fmt.Errorf("parse scoring verdict: %w", err)
	}

	for name, ps := range scores {
		ps.Public = normalize(ps.Public)
		ps.Private = normalize(ps.Private)
		scores[name] = ps
	}
	return scores, nil
}

// SummarizeTranscript condenses a negotiation transcript into a plan
// text suitable for scoring.
func (s *Scorer) SummarizeTranscript(ctx context.Context, transcript []negotiation.Utterance) (string, error) {
	var b strings.Builder
	for _, u := range transcript {
		fmt.Fprintf(&b, "[%s] %s\n", u.Speaker, u.Text)
	}

	text, err := s.client.Complete(ctx, completion.Request{
		Model:    s.model,
		System:   summarizerSystem,
		Messages: []completion.Message{{Role: "user", Content: b.String()}},
	})
	if err != nil {
		return "", fmt.Errorf("summarize transcript: %w", err)
	}
	return text, nil
}

// normalize recomputes total and satisfied when the judgment omitted or
// mangled them.
func normalize(vs VisibilityScore) VisibilityScore {
	if vs.Total == 0 && len(vs.Items) > 0 {
		vs.Total = len(vs.Items)
	}
	satisfied := 0
	for _, it := range vs.Items {
		if it.OK {
			satisfied++
		}
	}
	if len(vs.Items) > 0 {
		vs.Satisfied = satisfied
	}
	return vs
}

// extractJSON trims prose or code fences around a JSON object.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
