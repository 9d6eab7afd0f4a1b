package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// csvHeader matches the columns of one trial row.
var csvHeader = []string{
	"試行ID",
	"全公開シングル公開条件充足率",
	"全公開シングル非公開条件充足率",
	"半公開シングル公開条件充足率",
	"半公開シングル非公開条件充足率",
	"マルチ公開条件充足率",
	"マルチ非公開条件充足率",
	"マルチ最後のメッセージ",
}

// TrialRow is one CSV line: aggregate satisfaction percentages per
// condition and visibility, plus the negotiation's closing message.
type TrialRow struct {
	Trial           int
	FullPublicPct   int
	FullPrivatePct  int
	HalfPublicPct   int
	HalfPrivatePct  int
	MultiPublicPct  int
	MultiPrivatePct int
	LastMessage     string
}

// RowFromScores builds a trial row by aggregating the three conditions.
func RowFromScores(trial int, ms ModeScores, lastMessage string) TrialRow {
	return TrialRow{
		Trial:           trial,
		FullPublicPct:   AggregatePct(ms.FullSingle, Public),
		FullPrivatePct:  AggregatePct(ms.FullSingle, Private),
		HalfPublicPct:   AggregatePct(ms.PublicSingle, Public),
		HalfPrivatePct:  AggregatePct(ms.PublicSingle, Private),
		MultiPublicPct:  AggregatePct(ms.Multi, Public),
		MultiPrivatePct: AggregatePct(ms.Multi, Private),
		LastMessage:     lastMessage,
	}
}

// AppendCSV appends one trial row, writing the header first when the file
// is new or empty.
func AppendCSV(path string, row TrialRow) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat csv: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	record := []string{
		strconv.Itoa(row.Trial),
		strconv.Itoa(row.FullPublicPct),
		strconv.Itoa(row.FullPrivatePct),
		strconv.Itoa(row.HalfPublicPct),
		strconv.Itoa(row.HalfPrivatePct),
		strconv.Itoa(row.MultiPublicPct),
		strconv.Itoa(row.MultiPrivatePct),
		row.LastMessage,
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	w.Flush()
	return w.Error()
}
