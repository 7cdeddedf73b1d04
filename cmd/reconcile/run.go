package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/alecthomas/kong"

	"github.com/ledgerkit/reconcile/classify"
	"github.com/ledgerkit/reconcile/extend"
	"github.com/ledgerkit/reconcile/index"
	"github.com/ledgerkit/reconcile/money"
	"github.com/ledgerkit/reconcile/posting"
	"github.com/ledgerkit/reconcile/review"
	"github.com/ledgerkit/reconcile/stage"
	"github.com/ledgerkit/reconcile/telemetry"
)

// clearedMetaKey is the metadata key the reference is-cleared oracle
// checks for (spec.md §6: "typically 'posting has a metadata key from a
// registered set'").
const clearedMetaKey = "cleared"

// predictionConfidenceFloor is the minimum classifier confidence this host
// accepts before renaming an unknown posting's account automatically.
const predictionConfidenceFloor = 0.5

// RunCmd indexes a ledger file once and walks every transaction with an
// unknown account, surfacing ranked merge candidates for review.
type RunCmd struct {
	File          string `arg:"" help:"Path to the ledger fixture to reconcile."`
	FuzzyDays     int    `default:"3" help:"Date window (in days) the index searches around a candidate's date."`
	FuzzyAmount   string `default:"0.01" help:"Weight tolerance applied when matching postings."`
	DefaultOutput string `default:"reconciled.ledger" help:"File new merged transactions are appended to."`
	AutoAcceptTop bool   `help:"Accept the top-ranked candidate for every seed without prompting."`
}

func (cmd *RunCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx := context.Background()

	var collector telemetry.Collector
	var runTimer telemetry.Timer
	var once sync.Once

	reportTelemetry := func() {
		once.Do(func() {
			if collector != nil {
				runTimer.End()
				_, _ = fmt.Fprintln(ctx.Stderr)
				collector.Report(ctx.Stderr)
			}
		})
	}

	if globals.Telemetry {
		collector = telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)
		runTimer = collector.Start(fmt.Sprintf("reconcile %s", cmd.File))
		runCtx = telemetry.WithRootTimer(runCtx, runTimer)
		defer reportTelemetry()
	}

	classifier := classify.NewFrequencyClassifier()
	editor := dryRunEditor{w: ctx.Stdout}

	accepted, err := cmd.execute(runCtx, jsonParser{}, classifier, editor, ctx.Stdout)
	if err != nil {
		printError(ctx.Stderr, err.Error())
		reportTelemetry()
		return err
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("%d candidate(s) accepted", accepted))
	return nil
}

// execute runs the full pipeline once: load, index, extend every seed,
// predict and apply accounts for any unknown group the merge itself
// couldn't resolve, review the result, and stage accepted merges. Split
// out of Run so WatchCmd can re-invoke it on file changes.
func (cmd *RunCmd) execute(ctx context.Context, parser Parser, classifier classify.Classifier, editor stage.Editor, stdout io.Writer) (int, error) {
	txns, err := parser.LoadTransactions(ctx, cmd.File)
	if err != nil {
		return 0, err
	}

	fuzzyAmount, err := money.ParseDecimal(cmd.FuzzyAmount)
	if err != nil {
		return 0, fmt.Errorf("invalid --fuzzy-amount: %w", err)
	}

	isCleared := func(p *posting.Posting) bool {
		return p.Cleared || p.Meta.Has(clearedMetaKey)
	}

	idx := index.New(cmd.FuzzyDays, fuzzyAmount, isCleared, []string{classify.SourceMetaKey})

	byID := make(map[uint64]*posting.Transaction, len(txns))
	for _, txn := range txns {
		idx.Add(txn)
		byID[txn.ID()] = txn
	}
	if err := idx.Rebuild(ctx); err != nil {
		return 0, fmt.Errorf("failed to rebuild index: %w", err)
	}

	accepted := 0
	for _, seed := range txns {
		if len(classify.UnknownGroups(seed)) == 0 {
			continue
		}

		candidates := extend.GetExtendedTransactions(seed, idx)
		if len(candidates) == 0 {
			continue
		}

		top := candidates[0]
		predictions := resolveUnknowns(classifier, top.Merged)

		decision, err := cmd.reviewCandidate(stdout, top, len(candidates))
		if err != nil {
			return accepted, err
		}

		switch decision {
		case review.Accept:
			if err := cmd.stageAndApply(editor, top, byID); err != nil {
				return accepted, err
			}
			for group, account := range predictions {
				bag := classify.ExtractFeatureBag(top.Merged, group, classify.Registry{}, nil)
				_ = classifier.Train(bag, account)
			}
			accepted++
		case review.Edit:
			// Hand-editing a candidate before staging is the host's job
			// (spec.md §6 treats the Editor as an external collaborator);
			// this reference host has no interactive editor, so it skips
			// rather than silently accepting an unreviewed candidate.
			printInfof(stdout, "editing isn't implemented by this reference host; skipped")
		}
	}

	return accepted, nil
}

// resolveUnknowns asks the classifier to predict an account for every
// unknown-account group the merge left unresolved, and renames the
// group's postings in place when confidence clears the floor. Returns the
// groups it resolved, for training once the candidate is accepted.
func resolveUnknowns(classifier classify.Classifier, merged *posting.Transaction) map[string]string {
	resolved := make(map[string]string)
	for _, group := range classify.UnknownGroups(merged) {
		bag := classify.ExtractFeatureBag(merged, group, classify.Registry{}, nil)
		account, confidence, err := classifier.PredictAccount(bag)
		if err != nil || account == "" || confidence < predictionConfidenceFloor {
			continue
		}
		for _, p := range merged.Postings {
			if key, ok := posting.UnknownGroupKey(p.Account); ok && key == group {
				p.Account = account
			}
		}
		resolved[group] = account
	}
	return resolved
}

// reviewCandidate shows the top-ranked candidate (or, with
// --auto-accept-top, accepts it without prompting) and returns the
// reviewer's decision.
func (cmd *RunCmd) reviewCandidate(stdout io.Writer, top extend.Result, total int) (review.Decision, error) {
	if cmd.AutoAcceptTop {
		return review.Accept, nil
	}
	return review.Prompt(stdout, top, 1, total)
}

func (cmd *RunCmd) stageAndApply(editor stage.Editor, top extend.Result, byID map[uint64]*posting.Transaction) error {
	sources := make([]*posting.Transaction, 0, len(top.UsedTransactionIDs))
	for _, id := range top.UsedTransactionIDs {
		if src, ok := byID[id]; ok {
			sources = append(sources, src)
		}
	}

	changes := stage.BuildStagedChanges(top, sources, cmd.DefaultOutput)
	if _, err := editor.Apply(changes); err != nil {
		return fmt.Errorf("failed to apply staged changes: %w", err)
	}
	return nil
}
