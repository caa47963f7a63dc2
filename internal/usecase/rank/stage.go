package rank

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/talentrank/internal/metrics"
)

// Stage is a state of one rank run.
type Stage string

// Pipeline stages in execution order. Done and Failed are terminal.
const (
	StageFetchInput       Stage = "FETCH_INPUT"
	StageAnalyze          Stage = "ANALYZE"
	StageEmbed            Stage = "EMBED"
	StageQueryVectorIndex Stage = "QUERY_VECTOR_INDEX"
	StageFetchPool        Stage = "FETCH_POOL"
	StageCombine          Stage = "COMBINE"
	StageSortTruncate     Stage = "SORT_TRUNCATE"
	StageDone             Stage = "DONE"
	StageFailed           Stage = "FAILED"
)

// StageError records the stage a run failed in. errors.Is and errors.As see through it
// to the originating domain error.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("rank %s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// tracker follows a run through its stages and accumulates time per stage.
// FETCH_POOL and COMBINE alternate once per page, so their durations add up.
type tracker struct {
	stage   Stage
	entered time.Time
	spent   map[Stage]time.Duration
	now     func() time.Time
	log     *zap.Logger
}

func newTracker(now func() time.Time) *tracker {
	return &tracker{
		stage:   StageFetchInput,
		entered: now(),
		spent:   make(map[Stage]time.Duration),
		now:     now,
		log:     zap.NewNop(),
	}
}

func (t *tracker) enter(s Stage) {
	at := t.now()
	took := at.Sub(t.entered)
	t.spent[t.stage] += took
	t.log.Debug("stage transition",
		zap.String("from", string(t.stage)),
		zap.String("to", string(s)),
		zap.Duration("took", took),
	)
	t.stage, t.entered = s, at
}

func (t *tracker) fail(err error) error {
	failedIn := t.stage
	t.enter(StageFailed)
	return &StageError{Stage: failedIn, Err: err}
}

func (t *tracker) observe() {
	for s, d := range t.spent {
		metrics.RankStageDuration.WithLabelValues(string(s)).Observe(d.Seconds())
	}
}
