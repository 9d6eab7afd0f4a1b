package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/internal/completion"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/logging"
	"github.com/parleyhq/parley/internal/negotiation"
	"github.com/parleyhq/parley/internal/planner"
	"github.com/parleyhq/parley/internal/report"
	"github.com/parleyhq/parley/internal/wishes"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run offline negotiation trials and score the outcomes",
	Long: `Run repeated trials of up to three planning conditions and measure
how well each outcome satisfies the participants' wishes:

  single        one-shot plan with full wish visibility
  single_public one-shot plan from public wishes only
  multi         full negotiation between generated participants
  all           all three conditions (default)

Each trial appends one row of aggregate satisfaction rates to the CSV,
stores the aggregates in the sqlite trial store, and writes a markdown
report unless --no-report is given.`,
	RunE: runTrials,
}

var (
	runMode        string
	runWishesFile  string
	runTrialCount  int
	runNoReport    bool
	runReportPath  string
	runCSVPath     string
	runDBPath      string
	runMultiSource string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runMode, "mode", "all", "single, single_public, multi, or all")
	runCmd.Flags().StringVar(&runWishesFile, "wishes-file", "", "wishes input (.json/.yaml or text format; built-in default when empty)")
	runCmd.Flags().IntVar(&runTrialCount, "trials", 10, "number of trials per condition")
	runCmd.Flags().BoolVar(&runNoReport, "no-report", false, "skip markdown report generation")
	runCmd.Flags().StringVar(&runReportPath, "report-path", "", "report base path (overrides config)")
	runCmd.Flags().StringVar(&runCSVPath, "csv-path", "", "satisfaction CSV path (overrides config)")
	runCmd.Flags().StringVar(&runDBPath, "db-path", "", "sqlite trial store path (overrides config)")
	runCmd.Flags().StringVar(&runMultiSource, "multi-source", "summary", "multi scoring input: summary or logs")
}

func runTrials(cmd *cobra.Command, args []string) error {
	switch runMode {
	case "single", "single_public", "multi", "all":
	default:
		return fmt.Errorf("unknown mode %q", runMode)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if runReportPath == "" {
		runReportPath = cfg.Report.ReportPath
	}
	if runCSVPath == "" {
		runCSVPath = cfg.Report.CSVPath
	}
	if runDBPath == "" {
		runDBPath = cfg.Report.DBPath
	}

	logger, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer logger.Close()

	set, err := wishes.Load(runWishesFile)
	if err != nil {
		return err
	}

	store, err := report.OpenStore(runDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	client := completion.NewHTTPClient(cfg.Completion)
	plans := planner.New(client, cfg.Completion.AgentModel)
	scorer := report.NewScorer(client, cfg.Completion.AgentModel)
	ctx := cmd.Context()

	if runTrialCount < 1 {
		runTrialCount = 1
	}
	for trial := 1; trial <= runTrialCount; trial++ {
		fmt.Printf("\n########## Trial %d / %d ##########\n", trial, runTrialCount)
		if err := runOneTrial(ctx, cfg, logger, set, plans, scorer, client, store, trial); err != nil {
			return fmt.Errorf("trial %d: %w", trial, err)
		}
	}
	return nil
}

func runOneTrial(ctx context.Context, cfg *config.Config, logger *logging.Logger, set wishes.Set, plans *planner.Planner, scorer *report.Scorer, client completion.Client, store *report.Store, trial int) error {
	var (
		fullPlan, publicPlan planner.Plan
		multi                report.MultiSummary
		err                  error
	)

	if runMode == "single" || runMode == "all" {
		if fullPlan, err = plans.Full(ctx, set); err != nil {
			return err
		}
	}
	if runMode == "single_public" || runMode == "all" {
		if publicPlan, err = plans.PublicOnly(ctx, set); err != nil {
			return err
		}
	}
	if runMode == "multi" || runMode == "all" {
		if multi, err = runNegotiation(ctx, cfg, logger, set, client, trial); err != nil {
			return err
		}
	}

	multiInput := ""
	if len(multi.Transcript) > 0 {
		if runMultiSource == "logs" {
			var b strings.Builder
			for _, u := range multi.Transcript {
				fmt.Fprintf(&b, "[%s] %s\n", u.Speaker, u.Text)
			}
			multiInput = b.String()
		} else if multiInput, err = scorer.SummarizeTranscript(ctx, multi.Transcript); err != nil {
			return err
		}
	}

	scores := report.ModeScores{
		FullSingle:   scoreOrEmpty(ctx, scorer, fullPlan.Text, set),
		PublicSingle: scoreOrEmpty(ctx, scorer, publicPlan.Text, set),
		Multi:        scoreOrEmpty(ctx, scorer, multiInput, set),
	}

	lastMessage := ""
	if n := len(multi.Transcript); n > 0 {
		lastMessage = strings.TrimSpace(strings.ReplaceAll(multi.Transcript[n-1].Text, "\n", " "))
	}

	row := report.RowFromScores(trial, scores, lastMessage)
	if err := report.AppendCSV(runCSVPath, row); err != nil {
		return err
	}
	if err := store.Save(&report.TrialRecord{
		Trial:           trial,
		Mode:            runMode,
		FullPublicPct:   row.FullPublicPct,
		FullPrivatePct:  row.FullPrivatePct,
		HalfPublicPct:   row.HalfPublicPct,
		HalfPrivatePct:  row.HalfPrivatePct,
		MultiPublicPct:  row.MultiPublicPct,
		MultiPrivatePct: row.MultiPrivatePct,
		MultiState:      string(multi.State),
		MultiAttempts:   multi.Attempts,
		MultiMessages:   multi.MessageCount(),
		LastMessage:     lastMessage,
	}); err != nil {
		return err
	}

	if runNoReport {
		return nil
	}
	md := report.BuildMarkdown(report.Input{
		Wishes:        set,
		FullPlan:      fullPlan.Text,
		FullElapsed:   fullPlan.Elapsed,
		PublicPlan:    publicPlan.Text,
		PublicElapsed: publicPlan.Elapsed,
		Multi:         multi,
		MultiInput:    multiInput,
		Scores:        scores,
	})
	path, err := report.Save(md, fmt.Sprintf("%s_trial%d", runReportPath, trial))
	if err != nil {
		return err
	}
	fmt.Printf("report written: %s\n", path)
	return nil
}

// runNegotiation executes one fully generated negotiation in-process.
func runNegotiation(ctx context.Context, cfg *config.Config, logger *logging.Logger, set wishes.Set, client completion.Client, trial int) (report.MultiSummary, error) {
	neg := cfg.Negotiation
	specs := wishes.RosterSpecs(set, wishes.TravelerRoles,
		neg.AgreementMarker, neg.FinalPlanMarker, neg.AffirmPhrases,
		cfg.Completion.ModeratorModel, cfg.Completion.AgentModel)

	roster, err := negotiation.BuildRoster(specs, wishes.TaskPrompt(),
		cfg.Completion.AgentModel, client, neg.InputQueueDepth)
	if err != nil {
		return report.MultiSummary{}, err
	}

	sess := negotiation.NewSession(fmt.Sprintf("trial-%d", trial), roster, negotiation.Config{
		MessageBudget:   neg.MessageBudget,
		RetryBound:      neg.RetryBound,
		InputQueueDepth: neg.InputQueueDepth,
		Validator: &negotiation.Validator{
			AgreementMarker: neg.AgreementMarker,
			FinalPlanMarker: neg.FinalPlanMarker,
			AffirmPhrases:   neg.AffirmPhrases,
		},
	}, logger)

	start := time.Now()
	if err := sess.Start(); err != nil {
		return report.MultiSummary{}, err
	}

	done := make(chan struct{})
	go func() {
		sess.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		sess.Stop()
		<-done
	}

	transcript := sess.History()
	rounds := (len(transcript) + roster.Len() - 1) / roster.Len()
	return report.MultiSummary{
		Transcript: transcript,
		State:      sess.State(),
		Attempts:   sess.Attempts(),
		Elapsed:    time.Since(start),
		Rounds:     rounds,
	}, nil
}

// scoreOrEmpty judges the plan when there is one, and degrades to an
// all-unsatisfied score set when the plan is missing or the judgment
// fails, so a bad trial still produces a row.
func scoreOrEmpty(ctx context.Context, scorer *report.Scorer, planText string, set wishes.Set) report.Scores {
	if strings.TrimSpace(planText) == "" {
		return report.EmptyScores(set)
	}
	scores, err := scorer.ScoreWishes(ctx, planText, set)
	if err != nil {
		return report.EmptyScores(set)
	}
	return scores
}
