package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"stlcat/internal/catalog"
	"stlcat/internal/changeset"
	"stlcat/internal/config"
	"stlcat/internal/logging"
	"stlcat/internal/matchers"
	"stlcat/internal/rules"
	"stlcat/internal/tokenize"
	"stlcat/internal/vocab"
)

// Runner drives the batch normalization and matcher passes over the
// catalog. All output is a dry-run ChangeSet; nothing here writes record
// state.
type Runner struct {
	cfg    *config.Config
	snap   *vocab.Snapshot
	store  *catalog.Store
	logger *slog.Logger
}

func New(cfg *config.Config, snap *vocab.Snapshot, store *catalog.Store, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		snap:   snap,
		store:  store,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
}

// NormalizeOutput is the result of one dry-run normalization pass.
type NormalizeOutput struct {
	ChangeSet *changeset.ChangeSet
	// Residuals are this run's unmatched token counts; the caller decides
	// whether to fold them into the store's aggregate.
	Residuals map[string]int
}

// Normalize classifies every record and builds the proposal. Records are
// processed by a bounded worker pool and merged in input order, so the
// changeset content is deterministic regardless of scheduling.
func (r *Runner) Normalize(ctx context.Context) (*NormalizeOutput, error) {
	records, err := r.store.ListVariants(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate records: %w", err)
	}

	results, residuals, err := r.classifyAll(ctx, records)
	if err != nil {
		return nil, err
	}

	digest, err := r.cfg.RulesetDigest()
	if err != nil {
		return nil, fmt.Errorf("compute ruleset digest: %w", err)
	}
	builder := changeset.NewBuilder(digest, r.snap.Version())
	for i, record := range records {
		builder.AddResult(record.ID, record.Fields, false, results[i])
	}
	cs, err := builder.Build(time.Now())
	if err != nil {
		return nil, err
	}

	r.logger.Info("normalization pass complete",
		logging.String(logging.FieldChangeSet, cs.ID),
		logging.Int("records", len(records)),
		logging.Int("entries", len(cs.Entries)),
		logging.Int("residual_tokens", len(residuals)))
	return &NormalizeOutput{ChangeSet: cs, Residuals: residuals}, nil
}

// MatcherKind selects which context matcher a match run executes.
type MatcherKind string

const (
	MatchUnit       MatcherKind = "unit"
	MatchFranchise  MatcherKind = "franchise"
	MatchCollection MatcherKind = "collection"
)

// RunMatcher executes one context matcher over the catalog and builds the
// proposal changeset. Matcher input tokens are the leftovers of a fresh
// classification pass, so matchers always see the same token view the rule
// engine left behind.
func (r *Runner) RunMatcher(ctx context.Context, kind MatcherKind) (*changeset.ChangeSet, error) {
	records, err := r.store.ListVariants(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate records: %w", err)
	}
	results, _, err := r.classifyAll(ctx, records)
	if err != nil {
		return nil, err
	}

	matcherRecords := make([]matchers.Record, len(records))
	byID := make(map[string]*catalog.Variant, len(records))
	for i, record := range records {
		matcherRecords[i] = matchers.Record{
			ID:        record.ID,
			Fields:    record.Fields,
			Tokens:    results[i].Leftover,
			KitParent: record.KitParent,
		}
		byID[record.ID] = record
	}

	proposals, err := r.propose(kind, matcherRecords)
	if err != nil {
		return nil, err
	}

	digest, err := r.cfg.RulesetDigest()
	if err != nil {
		return nil, fmt.Errorf("compute ruleset digest: %w", err)
	}
	builder := changeset.NewBuilder(digest, r.snap.Version())
	for _, proposal := range proposals {
		record := byID[proposal.RecordID]
		builder.AddProposal(proposal, record.Fields)
	}
	cs, err := builder.Build(time.Now())
	if err != nil {
		return nil, err
	}
	r.logger.Info("matcher pass complete",
		logging.String("matcher", string(kind)),
		logging.String(logging.FieldChangeSet, cs.ID),
		logging.Int("proposals", len(proposals)))
	return cs, nil
}

func (r *Runner) propose(kind MatcherKind, records []matchers.Record) ([]matchers.Proposal, error) {
	switch kind {
	case MatchUnit:
		return matchers.NewUnitMatcher(r.cfg.Matcher, r.snap, r.logger).Propose(records), nil
	case MatchFranchise:
		matcher := matchers.NewCharacterMatcher(r.cfg.Matcher, r.snap, r.logger)
		proposals := matcher.Propose(records)
		// Second phase: every proposal revalidates against the snapshot
		// before it may be committed.
		valid := proposals[:0]
		for _, proposal := range proposals {
			if err := matcher.Revalidate(proposal, r.snap); err != nil {
				r.logger.Warn("proposal dropped on revalidation",
					logging.String(logging.FieldRecordID, proposal.RecordID),
					logging.Error(err))
				continue
			}
			valid = append(valid, proposal)
		}
		return valid, nil
	case MatchCollection:
		return matchers.NewCollectionMatcher(r.cfg.Matcher, r.snap, r.logger).Propose(records), nil
	default:
		return nil, fmt.Errorf("unknown matcher kind %q", kind)
	}
}

// classifyAll runs the rule engine over every record with a bounded worker
// pool. Results come back indexed by input position; residual counts are
// accumulated in per-worker shards and merged at the end.
func (r *Runner) classifyAll(ctx context.Context, records []*catalog.Variant) ([]rules.Result, map[string]int, error) {
	engine := rules.NewEngine(r.cfg, r.snap, r.logger)
	workers := r.cfg.Pipeline.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]rules.Result, len(records))
	jobs := make(chan int)
	shards := make([]map[string]int, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		shard := make(map[string]int)
		shards[w] = shard
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				result := engine.Classify(tokenize.Tokenize(records[idx].RelPath, r.cfg.Tokenizer))
				results[idx] = result
				for _, token := range result.Residual {
					shard[token]++
				}
			}
		}()
	}

	// Cancellation is cooperative: in-flight records finish, no new
	// records are handed out.
	var cancelErr error
feed:
	for idx := range records {
		if err := ctx.Err(); err != nil {
			cancelErr = err
			break
		}
		select {
		case jobs <- idx:
		case <-ctx.Done():
			cancelErr = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	if cancelErr != nil {
		return nil, nil, cancelErr
	}

	residuals := make(map[string]int)
	for _, shard := range shards {
		for token, count := range shard {
			residuals[token] += count
		}
	}
	return results, residuals, nil
}
