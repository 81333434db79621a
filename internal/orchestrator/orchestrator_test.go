package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/clarifyflow/internal/clarifier"
	"github.com/mrz1836/clarifyflow/internal/clock"
	"github.com/mrz1836/clarifyflow/internal/coder"
	"github.com/mrz1836/clarifyflow/internal/domain"
	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
	"github.com/mrz1836/clarifyflow/internal/kb"
	"github.com/mrz1836/clarifyflow/internal/metrics"
	"github.com/mrz1836/clarifyflow/internal/planner"
	"github.com/mrz1836/clarifyflow/internal/registry"
	"github.com/mrz1836/clarifyflow/internal/verifier"
)

//nolint:gochecknoglobals // fixed test instant
var pinned = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

type caseLine struct {
	task    string
	variant domain.Variant
	result  domain.CaseResult
}

type recordingReporter struct {
	infos    []string
	warnings []string
	cases    []caseLine
}

func (r *recordingReporter) Info(msg string)    { r.infos = append(r.infos, msg) }
func (r *recordingReporter) Warning(msg string) { r.warnings = append(r.warnings, msg) }
func (r *recordingReporter) Case(task string, variant domain.Variant, result domain.CaseResult) {
	r.cases = append(r.cases, caseLine{task: task, variant: variant, result: result})
}

type recordingMetrics struct {
	metrics.Nop
	provenances []domain.Provenance
	outcomes    map[string]string
}

func (m *recordingMetrics) RecordClarification(p domain.Provenance) {
	m.provenances = append(m.provenances, p)
}

func (m *recordingMetrics) RecordTask(task, outcome string) {
	if m.outcomes == nil {
		m.outcomes = map[string]string{}
	}
	m.outcomes[task] = outcome
}

type harness struct {
	orch     *Orchestrator
	reporter *recordingReporter
	metrics  *recordingMetrics
	kbPath   string
}

func newHarness(t *testing.T, kbPath string, opts Options) *harness {
	t.Helper()
	if kbPath == "" {
		kbPath = filepath.Join(t.TempDir(), "kb.json")
	}
	store := kb.NewStore(kbPath, kb.WithClock(clock.Fixed(pinned)))
	h := &harness{reporter: &recordingReporter{}, metrics: &recordingMetrics{}, kbPath: kbPath}
	h.orch = New(
		planner.New(),
		clarifier.New(store, clarifier.WithClock(clock.Fixed(pinned))),
		coder.New(),
		verifier.New(),
		WithReporter(h.reporter),
		WithMetrics(h.metrics),
		WithClock(clock.Fixed(pinned)),
		WithLogger(zerolog.Nop()),
		WithOptions(opts),
	)
	return h
}

func builtinTasks(t *testing.T) []domain.Task {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	return reg.All()
}

func runByTask(s domain.Summary) map[string]domain.RunReport {
	out := make(map[string]domain.RunReport, len(s.Runs))
	for _, r := range s.Runs {
		out[r.Task] = r
	}
	return out
}

func TestRun_BuiltinTasks(t *testing.T) {
	flags := domain.FeatureFlags{InteractiveClarify: false, OpenAICoder: true}
	h := newHarness(t, "", Options{Flags: flags})
	tasks := builtinTasks(t)

	summary, err := h.orch.Run(context.Background(), tasks)
	require.NoError(t, err)

	assert.Equal(t, pinned, summary.GeneratedAt)
	assert.Equal(t, flags, summary.FeatureFlags)
	require.Len(t, summary.Runs, len(tasks))

	for _, r := range summary.Runs {
		assert.GreaterOrEqual(t, r.Improvement, 0, r.Task)
		assert.Equal(t, r.Clarified.Passed-r.Baseline.Passed, r.Improvement, r.Task)
		assert.Equal(t, r.Baseline.Total, r.Clarified.Total, r.Task)
	}

	runs := runByTask(summary)

	fact := runs["factorial"]
	assert.True(t, fact.Decision.NeedsClarification)
	assert.Contains(t, fact.Decision.Reason, "negative input")
	assert.Equal(t, 1, fact.Clarifications.Len())
	assert.Equal(t, "factorial::case_3", fact.Baseline.Results[2].Name)
	assert.False(t, fact.Baseline.Results[2].Passed)
	assert.True(t, fact.Clarified.Results[2].Passed)
	assert.Equal(t, 1, fact.Improvement)

	csv := runs["parse_csv_line"]
	assert.False(t, csv.Baseline.Results[0].Passed)
	assert.Contains(t, csv.Baseline.Results[0].Detail, `got=["a","\"b","c\"","d"]`)
	assert.True(t, csv.Clarified.Results[0].Passed)

	sum := runs["sum_list"]
	assert.False(t, sum.Decision.NeedsClarification)
	assert.Empty(t, sum.Decision.Reason)
	assert.Zero(t, sum.Clarifications.Len())
	assert.Equal(t, sum.Baseline, sum.Clarified)
	assert.Zero(t, sum.Improvement)

	var sumLines, factLines int
	for _, c := range h.reporter.cases {
		switch c.task {
		case "sum_list":
			sumLines++
			assert.Equal(t, domain.VariantBaseline, c.variant)
		case "factorial":
			factLines++
		}
	}
	assert.Equal(t, len(sum.Baseline.Results), sumLines, "unflagged tasks are verified once")
	assert.Equal(t, 2*len(fact.Baseline.Results), factLines)

	for _, task := range tasks {
		assert.Equal(t, metrics.OutcomeReported, h.metrics.outcomes[task.Name])
	}
}

func TestRun_SecondRunUsesCache(t *testing.T) {
	kbPath := filepath.Join(t.TempDir(), "kb.json")
	tasks := builtinTasks(t)

	first := newHarness(t, kbPath, Options{})
	_, err := first.orch.Run(context.Background(), tasks)
	require.NoError(t, err)
	for _, p := range first.metrics.provenances {
		assert.Equal(t, domain.ProvenanceMock, p)
	}

	entries, err := kb.NewStore(kbPath).List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, entries, 3, "one record per flagged task")

	second := newHarness(t, kbPath, Options{})
	summary, err := second.orch.Run(context.Background(), tasks)
	require.NoError(t, err)
	require.Len(t, second.metrics.provenances, 3)
	for _, p := range second.metrics.provenances {
		assert.Equal(t, domain.ProvenanceCache, p)
	}
	assert.Equal(t, 1, runByTask(summary)["factorial"].Improvement)
}

func TestRun_ForceClarifyUnflaggedTask(t *testing.T) {
	h := newHarness(t, "", Options{Clarify: clarifier.Options{Force: true}})
	reg, err := registry.Default()
	require.NoError(t, err)
	task, ok := reg.Get("sum_list")
	require.True(t, ok)

	summary, err := h.orch.Run(context.Background(), []domain.Task{task})
	require.NoError(t, err)

	run := summary.Runs[0]
	assert.False(t, run.Decision.NeedsClarification)
	assert.Equal(t, 1, run.Clarifications.Len(), "forced resolution asks the generic question")
	assert.Equal(t, run.Baseline.Passed, run.Clarified.Passed)
	assert.Len(t, h.reporter.cases, 2*len(task.Cases))
}

func TestRun_SkipsInvalidAndUnknownTasks(t *testing.T) {
	h := newHarness(t, "", Options{})
	tasks := append([]domain.Task{
		{Name: "blank", Description: "   ", Function: "Blank"},
		{Name: "mystery", Description: "Handle inputs appropriately.", Function: "Mystery"},
	}, builtinTasks(t)...)

	summary, err := h.orch.Run(context.Background(), tasks)
	require.NoError(t, err)

	assert.Len(t, summary.Runs, len(tasks)-2)
	require.Len(t, h.reporter.warnings, 2)
	assert.Contains(t, h.reporter.warnings[0], "skipping blank")
	assert.Contains(t, h.reporter.warnings[1], "skipping mystery")
	assert.Equal(t, metrics.OutcomeSkipped, h.metrics.outcomes["blank"])
	assert.Equal(t, metrics.OutcomeSkipped, h.metrics.outcomes["mystery"])
}

func TestRun_KnowledgeBaseFailureDegrades(t *testing.T) {
	kbPath := filepath.Join(t.TempDir(), "kb.json")
	require.NoError(t, os.WriteFile(kbPath, []byte("{not json"), 0o600))

	h := newHarness(t, kbPath, Options{})
	summary, err := h.orch.Run(context.Background(), builtinTasks(t))
	require.NoError(t, err)

	fact := runByTask(summary)["factorial"]
	assert.Equal(t, 1, fact.Improvement, "clarification still happens without the knowledge base")
	assert.NotEmpty(t, h.reporter.warnings)
	assert.Contains(t, h.reporter.warnings[0], "knowledge base unavailable")

	data, err := os.ReadFile(kbPath) //nolint:gosec // test path
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data), "corrupt file is left untouched")
}

func TestRun_ContextCanceled(t *testing.T) {
	h := newHarness(t, "", Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.orch.Run(ctx, builtinTasks(t))
	require.ErrorIs(t, err, context.Canceled)
}

func TestTaskRun_Advance(t *testing.T) {
	ctx := context.Background()
	run := newTaskRun(domain.Task{Name: "t"}, zerolog.Nop())

	require.NoError(t, run.advance(ctx, domain.RunStatePlanned, pinned, ""))
	err := run.advance(ctx, domain.RunStateReported, pinned, "")
	require.ErrorIs(t, err, cferrors.ErrInvalidTransition)

	require.NoError(t, run.advance(ctx, domain.RunStateSkipClarify, pinned, ""))
	require.NoError(t, run.advance(ctx, domain.RunStateBaselineVerified, pinned, ""))
	require.NoError(t, run.advance(ctx, domain.RunStateClarifiedVerified, pinned, ""))
	require.NoError(t, run.advance(ctx, domain.RunStateReported, pinned, ""))

	assert.True(t, run.state.IsTerminal())
	require.Len(t, run.transitions, 5)
	assert.Equal(t, domain.RunStatePending, run.transitions[0].From)
}
