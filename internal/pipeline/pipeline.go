// Package pipeline runs the evaluation control flow: collect, classify
// the relation, gate, score, optionally judge, aggregate, assess
// completeness, and resolve the final use permission.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"credence/internal/config"
	"credence/internal/evidence"
	"credence/internal/fetch"
	"credence/internal/gate"
	"credence/internal/judge"
	"credence/internal/logging"
	"credence/internal/permission"
	"credence/internal/registry"
	"credence/internal/relation"
	"credence/internal/rubric"
	"credence/internal/score"
	"credence/internal/source"
)

// Collector is the fetch boundary. The evaluator never touches HTTP
// directly; tests substitute canned documents here.
type Collector interface {
	Fetch(ctx context.Context, url string) (fetch.Result, error)
	Crawl(ctx context.Context, main fetch.Result) []*source.FetchedDocument
}

// Request is one source to evaluate.
type Request struct {
	URL      string
	Use      source.IntendedUse
	Relation source.Relation // RelationAuto for heuristic classification
	Label    string          // optional works-cited label
}

// Evaluator wires the stages together. All fields are read-only after
// construction; one Evaluator may serve concurrent evaluations.
type Evaluator struct {
	collector Collector
	reg       *registry.Registry
	gate      *gate.Engine
	scorer    *rubric.Scorer
	judge     *judge.Judge // nil = heuristic-only
	mode      score.Mode
	policy    config.Policy
	log       *slog.Logger
}

func NewEvaluator(collector Collector, reg *registry.Registry, j *judge.Judge, mode score.Mode, policy config.Policy) *Evaluator {
	return &Evaluator{
		collector: collector,
		reg:       reg,
		gate:      gate.NewEngine(reg, policy),
		scorer:    rubric.NewScorer(reg, policy),
		judge:     j,
		mode:      mode,
		policy:    policy,
		log:       logging.New("pipeline"),
	}
}

// Evaluate runs one source through the full pipeline. batchMains carries
// every main document of the batch (this one included) so corroboration
// can see the other sources; pass nil for a single-source run.
func (e *Evaluator) Evaluate(ctx context.Context, req Request, main fetch.Result, batchMains []*source.FetchedDocument) *EvaluationResult {
	doc := main.Doc
	entry := e.reg.Lookup(doc.Domain)

	rel, relWhy := relation.Classify(doc, entry, req.Relation)

	res := &EvaluationResult{
		URL:         req.URL,
		FinalURL:    doc.FinalURL,
		Domain:      doc.Domain,
		Title:       doc.Title,
		FetchStatus: doc.FetchStatus,
		PageType:    main.PageType,
		IntendedUse: req.Use,
		Relation:    rel,
		RelationWhy: relWhy,
		Label:       req.Label,
		WorksCited:  FormatWorksCited(doc, time.Now()),
	}

	var aux []*source.FetchedDocument
	if doc.FetchStatus.Retrieved() {
		aux = e.collector.Crawl(ctx, main)
	}
	res.EvidencePages = pageURLs(doc, aux)

	res.Gate = e.gate.Evaluate(doc, aux, rel, main.PageType)
	res.Completeness = permission.AssessCompleteness(doc, main.PageType, e.policy)

	// auto_reject is terminal: nothing is ever scored.
	if res.Gate.AutoReject {
		res.Confidence = permission.AssessConfidence(res.Completeness, false)
		res.UsePermission = source.PermissionDoNotUse
		return res
	}

	heur := e.scorer.Score(rubric.Input{
		Main:     doc,
		Aux:      aux,
		AllMains: batchMains,
		Relation: rel,
		PageType: main.PageType,
	})

	var judged rubric.Set
	if e.judge != nil && e.mode != score.ModeHeuristic && doc.FetchStatus.Retrieved() {
		pack := evidence.Build(doc, aux, evidence.BuildContext{
			IntendedUse:  req.Use,
			Relation:     rel,
			PageType:     main.PageType,
			Completeness: res.Completeness,
		}, e.policy.MainClipChars, e.policy.AuxClipChars)

		set, err := e.judge.Score(ctx, pack)
		if err != nil {
			// The judge failing is data, not a pipeline stop: fall back
			// to heuristics and record why.
			res.LLMError = err.Error()
			e.log.Warn("judge discarded, using heuristics", "url", req.URL, "error", err)
		} else {
			judged = set
			res.LLMUsed = true
		}
	}

	res.Criteria = score.Merge(e.mode, heur, judged)
	res.PointsScored, res.DenomPoints, res.HSUS = score.Points(res.Criteria)
	res.Confidence = permission.AssessConfidence(res.Completeness, res.LLMUsed)

	res.UsePermission = permission.Resolve(permission.Input{
		Use:          req.Use,
		Gate:         res.Gate,
		Completeness: res.Completeness,
		HSUS:         res.HSUS,
		Criteria:     res.Criteria,
		MultiSource:  len(batchMains) >= 2,
		Tertiary:     entry.TertiaryReference,
	})
	return res
}

// EvaluateOne fetches and evaluates a single source.
func (e *Evaluator) EvaluateOne(ctx context.Context, req Request) (*EvaluationResult, error) {
	main, err := e.collector.Fetch(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	return e.Evaluate(ctx, req, main, nil), nil
}

// EvaluateBatch evaluates a set of sources. All mains are fetched first
// so every evaluation sees the same complete batch for corroboration,
// then evaluations run on a bounded worker pool. One source failing or
// timing out never cancels the rest. If checkpoint is non-nil it is
// called with the growing result list after each completed evaluation.
func (e *Evaluator) EvaluateBatch(ctx context.Context, reqs []Request, workers int, checkpoint func([]*EvaluationResult)) []*EvaluationResult {
	mains := make([]fetch.Result, len(reqs))
	for i, req := range reqs {
		main, err := e.collector.Fetch(ctx, req.URL)
		if err != nil {
			e.log.Warn("fetch rejected", "url", req.URL, "error", err)
			main = fetch.Result{Doc: &source.FetchedDocument{
				URL:         req.URL,
				FetchStatus: source.FetchHTTPError,
				Warnings:    []string{"bad URL: " + err.Error()},
			}}
		}
		mains[i] = main
	}
	batchMains := make([]*source.FetchedDocument, len(mains))
	for i := range mains {
		batchMains[i] = mains[i].Doc
	}

	results := make([]*EvaluationResult, len(reqs))
	var mu sync.Mutex
	done := 0

	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range reqs {
		g.Go(func() error {
			res := e.Evaluate(gctx, reqs[i], mains[i], batchMains)
			mu.Lock()
			results[i] = res
			done++
			if checkpoint != nil {
				snapshot := make([]*EvaluationResult, 0, done)
				for _, r := range results {
					if r != nil {
						snapshot = append(snapshot, r)
					}
				}
				checkpoint(snapshot)
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func pageURLs(main *source.FetchedDocument, aux []*source.FetchedDocument) []string {
	urls := []string{main.Resolved()}
	for _, p := range aux {
		urls = append(urls, p.Resolved())
	}
	return urls
}
