package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/parleyhq/parley/internal/negotiation"
	"github.com/parleyhq/parley/internal/wishes"
)

// MultiSummary describes one negotiated run for reporting.
type MultiSummary struct {
	Transcript []negotiation.Utterance
	State      negotiation.SessionState
	Attempts   int
	Elapsed    time.Duration
	Rounds     int
}

// MessageCount returns the transcript length.
func (m MultiSummary) MessageCount() int { return len(m.Transcript) }

// ModeScores groups the satisfaction scores of the three conditions.
type ModeScores struct {
	FullSingle   Scores
	PublicSingle Scores
	Multi        Scores
}

// Input collects everything one trial report needs.
type Input struct {
	Wishes        wishes.Set
	FullPlan      string
	FullElapsed   time.Duration
	PublicPlan    string
	PublicElapsed time.Duration
	Multi         MultiSummary
	MultiInput    string // the text the multi condition was scored on
	Scores        ModeScores
}

// BuildMarkdown renders a full trial report: timing, wishes, satisfaction
// rates, the per-condition checklist, and the raw outputs.
func BuildMarkdown(in Input) string {
	var md []string
	md = append(md, "# 旅行計画レポート", "")
	md = append(md, fmt.Sprintf("- **日時（実行）**: %s", time.Now().Format("2006-01-02 15:04:05 MST")), "")

	md = append(md, "## 所要時間・ラウンド")
	md = append(md, "| 方式 | 実時間(s) | メッセージ数 | ラウンド数 | 状態 |")
	md = append(md, "|---|---:|---:|---:|---|")
	md = append(md, fmt.Sprintf("| 全公開シングル | %.3f | — | — | — |", in.FullElapsed.Seconds()))
	md = append(md, fmt.Sprintf("| 半公開シングル | %.3f | — | — | — |", in.PublicElapsed.Seconds()))
	md = append(md, fmt.Sprintf("| マルチ | %.3f | %d | %d | %s |",
		in.Multi.Elapsed.Seconds(), in.Multi.MessageCount(), in.Multi.Rounds, in.Multi.State))
	md = append(md, "")

	md = append(md, "## 各人の希望（公開/非公開）")
	for _, name := range in.Wishes.Names() {
		sp := in.Wishes[name]
		md = append(md, fmt.Sprintf("- **%s（公開）**: %s", name, joinOrNone(sp.Public)))
		md = append(md, fmt.Sprintf("- **%s（非公開）**: %s", name, joinOrNone(sp.Private)))
	}
	md = append(md, "")

	md = append(md, "## 希望充足率")
	md = append(md, SatisfactionTable(in.Wishes, in.Scores))
	md = append(md, "")

	md = append(md, "## 条件別チェックリスト")
	md = append(md, ConditionChecklist(in.Wishes, in.Scores))
	md = append(md, "")

	md = append(md, "### 充足率判定に用いたマルチ入力（推測を含む）")
	md = append(md, orPlaceholder(in.MultiInput, "（要約/ログなし または 未実行）"))
	md = append(md, "")

	md = append(md, "## シングル（全公開）の出力")
	md = append(md, orPlaceholder(in.FullPlan, "（未実行）"))
	md = append(md, "")
	md = append(md, "## シングル（半公開=公開のみ）の出力")
	md = append(md, orPlaceholder(in.PublicPlan, "（未実行）"))
	md = append(md, "")

	md = append(md, "## マルチのログ")
	if len(in.Multi.Transcript) == 0 {
		md = append(md, "（未実行）")
	} else {
		for _, u := range in.Multi.Transcript {
			md = append(md, fmt.Sprintf("- **[%s]** %s", u.Speaker, strings.ReplaceAll(u.Text, "\n", " ")))
		}
	}
	md = append(md, "")
	return strings.Join(md, "\n")
}

// SatisfactionTable renders satisfied/total cells for each person across
// the three conditions and both visibilities.
func SatisfactionTable(set wishes.Set, ms ModeScores) string {
	rows := []string{
		"| 人 | 全公開シングル 公開 | 全公開シングル 非公開 | 半公開シングル 公開 | 半公開シングル 非公開 | マルチ 公開 | マルチ 非公開 |",
		"|---|---:|---:|---:|---:|---:|---:|",
	}
	for _, name := range set.Names() {
		rows = append(rows, fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s |",
			name,
			cell(ms.FullSingle, name, Public), cell(ms.FullSingle, name, Private),
			cell(ms.PublicSingle, name, Public), cell(ms.PublicSingle, name, Private),
			cell(ms.Multi, name, Public), cell(ms.Multi, name, Private)))
	}
	return strings.Join(rows, "\n")
}

// ConditionChecklist renders one row per wish with a ✓/✗ mark for each
// condition. The wish labels come from the first condition that judged
// the person, preferring the multi run.
func ConditionChecklist(set wishes.Set, ms ModeScores) string {
	rows := []string{
		"| 人 | 公開/非公開 | 条件 | 全公開シングル | 半公開シングル | マルチ |",
		"|---|---|---|---|---|---|",
	}
	for _, name := range set.Names() {
		for _, vis := range []Visibility{Public, Private} {
			base := items(ms.Multi, name, vis)
			if len(base) == 0 {
				base = items(ms.FullSingle, name, vis)
			}
			if len(base) == 0 {
				base = items(ms.PublicSingle, name, vis)
			}
			if len(base) == 0 {
				rows = append(rows, fmt.Sprintf("| %s | %s | （項目なし） |  |  |  |", name, vis))
				continue
			}
			for _, cond := range base {
				rows = append(rows, fmt.Sprintf("| %s | %s | %s | %s | %s | %s |",
					name, vis, cond.Wish,
					mark(ms.FullSingle, name, vis, cond.Wish),
					mark(ms.PublicSingle, name, vis, cond.Wish),
					mark(ms.Multi, name, vis, cond.Wish)))
			}
		}
	}
	return strings.Join(rows, "\n")
}

// Save writes the report to a timestamped markdown file next to basePath
// and returns the path written.
func Save(md, basePath string) (string, error) {
	path := fmt.Sprintf("%s_%s.md", basePath, time.Now().Format("2006-01-02_15-04-05"))
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return path, nil
}

func cell(sc Scores, name string, vis Visibility) string {
	vs := sc[name].Get(vis)
	pct := "0%"
	if vs.Total > 0 {
		pct = fmt.Sprintf("%d%%", int(float64(vs.Satisfied)/float64(vs.Total)*100+0.5))
	}
	return fmt.Sprintf("%d/%d (%s)", vs.Satisfied, vs.Total, pct)
}

func items(sc Scores, name string, vis Visibility) []WishVerdict {
	return sc[name].Get(vis).Items
}

func mark(sc Scores, name string, vis Visibility, wish string) string {
	for _, it := range items(sc, name, vis) {
		if it.Wish == wish && it.OK {
			return "✓"
		}
	}
	return "✗"
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "（なし）"
	}
	return strings.Join(items, "； ")
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
