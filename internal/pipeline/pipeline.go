// Package pipeline orchestrates a consolidation run: stream source dumps,
// adapt documents to records, resolve each record against the live profile
// set, merge, score, and persist.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/speaker-cli/internal/adapter"
	"github.com/sells-group/speaker-cli/internal/merge"
	"github.com/sells-group/speaker-cli/internal/model"
	"github.com/sells-group/speaker-cli/internal/resolve"
	"github.com/sells-group/speaker-cli/internal/score"
	"github.com/sells-group/speaker-cli/internal/source"
	"github.com/sells-group/speaker-cli/internal/store"
	"github.com/sells-group/speaker-cli/internal/taxonomy"
)

// Companion dumps carrying the detail side of joined sources. Loaded
// fully up front so adapters can join by key during streaming.
var companionFiles = map[string]string{
	"bigspeak":           "bigspeak_profiles",
	"sessionize":         "sessionize_profiles",
	"speakerhub":         "speakerhub_details",
	"thespeakerhandbook": "thespeakerhandbook_profiles",
}

// loadExistingPageSize bounds how many profiles are pulled per query when
// warming the blocking index from the store.
const loadExistingPageSize = 500

// Options tunes a consolidation run.
type Options struct {
	// Workers bounds the parallel adapt stage. Zero means 4.
	Workers int
	// Sources restricts the run to the named sources. Empty means all.
	Sources []string
	// StageRecords archives adapted records when the store supports it.
	StageRecords bool
	// Now is the run clock. Zero value means time.Now.
	Now func() time.Time
}

// Pipeline runs consolidation passes against one store.
type Pipeline struct {
	store   store.ProfileStore
	merger  *merge.Merger
	workers int
	sources map[string]bool
	stage   bool
	now     func() time.Time
	log     *zap.Logger
}

// New builds a pipeline over the loaded taxonomy tables.
func New(st store.ProfileStore, tables *taxonomy.Set, opts Options) *Pipeline {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	var sources map[string]bool
	if len(opts.Sources) > 0 {
		sources = make(map[string]bool, len(opts.Sources))
		for _, s := range opts.Sources {
			sources[s] = true
		}
	}
	return &Pipeline{
		store:   st,
		merger:  merge.New(tables),
		workers: workers,
		sources: sources,
		stage:   opts.StageRecords,
		now:     now,
		log:     zap.L().With(zap.String("component", "pipeline")),
	}
}

// Consolidate ingests every present source dump from dir and folds the
// records into the canonical profile set. The returned Run is also
// persisted, including on failure.
func (pl *Pipeline) Consolidate(ctx context.Context, dir *source.Dir) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.New().String(),
		Status:    model.RunStatusRunning,
		Sources:   map[string]model.SourceCount{},
		StartedAt: pl.now().UTC(),
	}
	if err := pl.store.SaveRun(ctx, run); err != nil {
		return nil, eris.Wrap(err, "pipeline: record run start")
	}
	pl.log.Info("consolidation started", zap.String("run_id", run.ID))

	if err := pl.consolidate(ctx, dir, run); err != nil {
		run.Status = model.RunStatusFailed
		run.Error = err.Error()
		run.FinishedAt = pl.now().UTC()
		if saveErr := pl.store.SaveRun(ctx, run); saveErr != nil {
			pl.log.Warn("failed to record run failure", zap.Error(saveErr))
		}
		return run, err
	}

	run.Status = model.RunStatusComplete
	run.FinishedAt = pl.now().UTC()
	if err := pl.store.SaveRun(ctx, run); err != nil {
		return run, eris.Wrap(err, "pipeline: record run completion")
	}
	pl.log.Info("consolidation complete",
		zap.String("run_id", run.ID),
		zap.Int("profiles", run.Profiles),
		zap.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)),
	)
	return run, nil
}

func (pl *Pipeline) consolidate(ctx context.Context, dir *source.Dir, run *model.Run) error {
	index := resolve.NewIndex()
	profiles := map[string]*model.CanonicalProfile{}
	if err := pl.loadExisting(ctx, index, profiles); err != nil {
		return err
	}
	pl.log.Info("blocking index warmed", zap.Int("profiles", index.Len()))

	registry, err := pl.buildRegistry(ctx, dir)
	if err != nil {
		return err
	}

	var staged []*model.SourceRecord
	for _, ad := range registry.Ordered() {
		name := ad.Source()
		if pl.sources != nil && !pl.sources[name] {
			continue
		}
		if !dir.Has(name) {
			pl.log.Debug("no dump for source, skipping", zap.String("source", name))
			continue
		}
		count, records, err := pl.ingestSource(ctx, dir, ad, index, profiles, run.StartedAt)
		if err != nil {
			return err
		}
		run.Sources[name] = count
		staged = append(staged, records...)
		pl.log.Info("source ingested",
			zap.String("source", name),
			zap.Int("seen", count.Seen),
			zap.Int("created", count.Created),
			zap.Int("merged", count.Merged),
			zap.Int("skipped", count.Skipped),
		)
	}

	if err := pl.finalize(ctx, profiles); err != nil {
		return err
	}

	if pl.stage {
		if stager, ok := pl.store.(store.RecordStager); ok {
			if n, stageErr := stager.StageRecords(ctx, run.ID, staged, pl.now().UTC()); stageErr != nil {
				pl.log.Warn("raw record staging failed", zap.Error(stageErr))
			} else {
				pl.log.Info("raw records staged", zap.Int64("records", n))
			}
		}
	}

	total, err := pl.store.CountProfiles(ctx)
	if err != nil {
		return eris.Wrap(err, "pipeline: count profiles")
	}
	run.Profiles = total
	return nil
}

// loadExisting pages the stored profile set into the blocking index so new
// records can match profiles from earlier runs.
func (pl *Pipeline) loadExisting(ctx context.Context, index *resolve.Index, profiles map[string]*model.CanonicalProfile) error {
	for offset := 0; ; offset += loadExistingPageSize {
		batch, err := pl.store.ListProfiles(ctx, store.ProfileFilter{Limit: loadExistingPageSize, Offset: offset})
		if err != nil {
			return eris.Wrap(err, "pipeline: load existing profiles")
		}
		for i := range batch {
			p := &batch[i]
			index.Add(p)
			profiles[p.ProfileID] = p
		}
		if len(batch) < loadExistingPageSize {
			return nil
		}
	}
}

// buildRegistry constructs all source adapters, loading the companion
// dumps that joined sources need.
func (pl *Pipeline) buildRegistry(ctx context.Context, dir *source.Dir) (*adapter.Registry, error) {
	companions := map[string][]source.Document{}
	for src, file := range companionFiles {
		docs, err := dir.LoadOptional(ctx, file)
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: load %s", file)
		}
		companions[src] = docs
	}
	return adapter.NewRegistry(
		adapter.NewASpeakers(),
		adapter.NewAllAmericanSpeakers(),
		adapter.NewBigSpeak(companions["bigspeak"]),
		adapter.NewLeadingAuthorities(),
		adapter.NewEventRaptor(),
		adapter.NewFreeSpeakerBureau(pl.now().UTC().Year()),
		adapter.NewSessionize(companions["sessionize"]),
		adapter.NewSpeakerHub(companions["speakerhub"]),
		adapter.NewTheSpeakerHandbook(companions["thespeakerhandbook"]),
		adapter.NewLLMParsed(),
	), nil
}

type adaptJob struct {
	seq int
	doc source.Document
}

type adaptResult struct {
	seq int
	rec *model.SourceRecord
	err error
}

// ingestSource streams one dump through a bounded adapt stage and a single
// resolve+merge consumer. Results are re-sequenced to document order so a
// run is deterministic regardless of worker scheduling.
func (pl *Pipeline) ingestSource(
	ctx context.Context,
	dir *source.Dir,
	ad adapter.Adapter,
	index *resolve.Index,
	profiles map[string]*model.CanonicalProfile,
	runTime time.Time,
) (model.SourceCount, []*model.SourceRecord, error) {
	name := ad.Source()
	docs, streamErrs := dir.Stream(ctx, name)

	g, gCtx := errgroup.WithContext(ctx)
	jobs := make(chan adaptJob)
	results := make(chan adaptResult, pl.workers)

	g.Go(func() error {
		defer close(jobs)
		seq := 0
		for doc := range docs {
			select {
			case jobs <- adaptJob{seq: seq, doc: doc}:
				seq++
			case <-gCtx.Done():
				return gCtx.Err()
			}
		}
		return nil
	})

	for w := 0; w < pl.workers; w++ {
		g.Go(func() error {
			for job := range jobs {
				rec, err := ad.Adapt(job.doc)
				select {
				case results <- adaptResult{seq: job.seq, rec: rec, err: err}:
				case <-gCtx.Done():
					return gCtx.Err()
				}
			}
			return nil
		})
	}

	workerErr := make(chan error, 1)
	go func() {
		workerErr <- g.Wait()
		close(results)
	}()

	var count model.SourceCount
	var records []*model.SourceRecord
	pending := map[int]adaptResult{}
	next := 0
	for res := range results {
		pending[res.seq] = res
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++

			count.Seen++
			if r.err != nil {
				count.Skipped++
				pl.log.Warn("document skipped",
					zap.String("source", name),
					zap.Error(r.err),
				)
				continue
			}
			pl.apply(index, profiles, r.rec, runTime, &count)
			records = append(records, r.rec)
		}
	}

	if err := <-workerErr; err != nil {
		return count, nil, eris.Wrapf(err, "pipeline: adapt %s", name)
	}
	if err := <-streamErrs; err != nil {
		return count, nil, eris.Wrapf(err, "pipeline: stream %s", name)
	}
	return count, records, nil
}

// apply resolves one record against the index and merges it, founding a
// new profile when nothing matches.
func (pl *Pipeline) apply(
	index *resolve.Index,
	profiles map[string]*model.CanonicalProfile,
	rec *model.SourceRecord,
	runTime time.Time,
	count *model.SourceCount,
) {
	if cand := index.FindMatch(rec); cand != nil {
		p := pl.merger.Merge(cand.Profile, rec, cand.Score, runTime)
		index.Reindex(p)
		profiles[p.ProfileID] = p
		count.Merged++
		return
	}
	p := pl.merger.Merge(nil, rec, 0, runTime)
	index.Add(p)
	profiles[p.ProfileID] = p
	count.Created++
}

// finalize derives scores and persists every profile touched or loaded
// this run, in stable id order.
func (pl *Pipeline) finalize(ctx context.Context, profiles map[string]*model.CanonicalProfile) error {
	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		p := profiles[id]
		score.Apply(p)
		if err := pl.store.UpsertProfile(ctx, p); err != nil {
			return eris.Wrapf(err, "pipeline: upsert profile %s", id)
		}
	}
	return nil
}
