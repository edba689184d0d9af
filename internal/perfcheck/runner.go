// Package perfcheck runs the bundle analysis pipeline: collect, score, report.
package perfcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fluxbase-eu/bundlescore/internal/bundlesize"
	"github.com/fluxbase-eu/bundlescore/internal/config"
	"github.com/fluxbase-eu/bundlescore/internal/observability"
	"github.com/fluxbase-eu/bundlescore/internal/report"
	"github.com/fluxbase-eu/bundlescore/internal/scoring"
)

// ErrBelowTarget is returned when the score does not reach the configured target
var ErrBelowTarget = errors.New("bundle score below target")

// Result is the outcome of one run
type Result struct {
	RunID           string               `json:"runId" yaml:"runId"`
	Analysis        *bundlesize.Analysis `json:"analysis" yaml:"analysis"`
	Score           float64              `json:"score" yaml:"score"`
	Rating          string               `json:"rating" yaml:"rating"`
	Target          float64              `json:"target" yaml:"target"`
	Passed          bool                 `json:"passed" yaml:"passed"`
	Recommendations []string             `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
	ArtifactPath    string               `json:"artifactPath" yaml:"artifactPath"`

	top      int
	previous *report.Artifact
}

// RenderText writes the human-readable report, followed by the changes since
// the previous artifact when comparison was enabled and one existed
func (res *Result) RenderText(w io.Writer) error {
	report.Render(w, res.Analysis, res.Score, report.Options{
		Target: res.Target,
		Top:    res.top,
	})
	if res.previous != nil {
		return report.Compare(w, res.previous, res.Analysis, res.Score)
	}
	return nil
}

// WriteNotFound explains a missing build directory to the user
func WriteNotFound(w io.Writer, dir string) {
	_, _ = fmt.Fprintf(w, "Build directory not found: %s\nRun the production build first.\n", dir)
}

// Runner executes the pipeline with a fixed configuration
type Runner struct {
	cfg          *config.Config
	out          io.Writer
	metrics      *observability.Metrics
	tracer       *observability.Tracer
	renderReport bool
	now          func() time.Time
}

// Option configures a Runner
type Option func(*Runner)

// WithOutput sets where the report is written (default os.Stdout)
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.out = w
	}
}

// WithMetrics records run metrics; they are exported when metrics.file is set
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithTracer wraps every stage in a span
func WithTracer(t *observability.Tracer) Option {
	return func(r *Runner) {
		r.tracer = t
	}
}

// WithoutReport keeps the Runner silent, for callers printing the Result themselves
func WithoutReport() Option {
	return func(r *Runner) {
		r.renderReport = false
	}
}

// NewRunner creates a Runner
func NewRunner(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:          cfg,
		out:          os.Stdout,
		renderReport: true,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.tracer == nil {
		// A disabled tracer never fails to build
		r.tracer, _ = observability.NewTracer(context.Background(), observability.TracerConfig{})
	}

	return r
}

// Run collects, scores and reports the build output. The returned error wraps
// bundlesize.ErrDirectoryNotFound or ErrBelowTarget for the two expected failures;
// with ErrBelowTarget the Result is still returned.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	started := r.now()
	runID := uuid.NewString()
	ctx, span := r.tracer.StartSpan(ctx, "bundlescore.run")
	observability.SetSpanAttributes(ctx, attribute.String("bundlescore.run_id", runID))

	logCtx := log.With().Str("run_id", runID)
	if traceID := observability.ExtractTraceID(ctx); traceID != "" {
		logCtx = logCtx.Str("trace_id", traceID)
	}
	logger := logCtx.Logger()

	result, err := r.run(ctx, logger, runID)
	if result != nil && r.metrics != nil {
		finished := r.now()
		r.metrics.RecordRun(finished, finished.Sub(started))
		if path := r.cfg.MetricsPath(); path != "" {
			if mErr := r.metrics.WriteTextfile(path); mErr != nil && err == nil {
				err = mErr
			}
		}
	}

	if errors.Is(err, ErrBelowTarget) {
		// Expected outcome, the span stays successful
		observability.EndSpan(span, nil)
	} else {
		observability.EndSpan(span, err)
	}

	return result, err
}

func (r *Runner) run(ctx context.Context, logger zerolog.Logger, runID string) (*Result, error) {
	buildPath := r.cfg.BuildPath()

	analysis, err := r.collect(ctx, buildPath)
	if err != nil {
		if errors.Is(err, bundlesize.ErrDirectoryNotFound) && r.renderReport {
			WriteNotFound(r.out, buildPath)
		}
		logger.Debug().Err(err).Str("dir", buildPath).Msg("Collection failed")
		return nil, err
	}

	// An interrupted run leaves the previous artifact untouched
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	score := r.score(ctx, analysis)
	passed := score >= r.cfg.Target

	result := &Result{
		RunID:           runID,
		Analysis:        analysis,
		Score:           score,
		Rating:          scoring.Rating(score),
		Target:          r.cfg.Target,
		Passed:          passed,
		Recommendations: report.Recommendations(analysis),
		ArtifactPath:    r.cfg.ArtifactPath(),
		top:             r.cfg.Report.Top,
	}

	if err := r.report(ctx, logger, result); err != nil {
		return nil, err
	}

	logger.Info().
		Float64("score", score).
		Float64("target", r.cfg.Target).
		Str("rating", result.Rating).
		Bool("passed", passed).
		Msg("Bundle analysis complete")

	if !passed {
		return result, fmt.Errorf("%w: %.1f < %.1f", ErrBelowTarget, score, r.cfg.Target)
	}
	return result, nil
}

func (r *Runner) collect(ctx context.Context, dir string) (*bundlesize.Analysis, error) {
	ctx, span := r.tracer.StartStageSpan(ctx, "collect")

	analysis, err := bundlesize.Collect(dir)
	if err == nil {
		observability.SetSpanAttributes(ctx,
			attribute.Int64("bundle.total_bytes", analysis.TotalSize),
			attribute.Int("bundle.files", len(analysis.Files)),
		)
		if r.metrics != nil {
			r.metrics.RecordAnalysis(analysis)
		}
	}

	observability.EndSpan(span, err)
	return analysis, err
}

func (r *Runner) score(ctx context.Context, analysis *bundlesize.Analysis) float64 {
	ctx, span := r.tracer.StartStageSpan(ctx, "score")
	defer span.End()

	rules := r.cfg.Scoring
	if rules.IsZero() {
		// Hand-built configs without a scoring section get the stock thresholds
		rules = scoring.DefaultRules()
	}

	score := scoring.Score(analysis, rules)
	observability.SetSpanAttributes(ctx, attribute.Float64("bundle.score", score))
	if r.metrics != nil {
		r.metrics.RecordScore(score, r.cfg.Target)
	}

	return score
}

func (r *Runner) report(ctx context.Context, logger zerolog.Logger, result *Result) (err error) {
	_, span := r.tracer.StartStageSpan(ctx, "report")
	defer func() { observability.EndSpan(span, err) }()

	// The previous artifact must be read before it is overwritten
	if r.cfg.Report.Compare {
		previous, readErr := report.ReadArtifact(result.ArtifactPath)
		if readErr != nil {
			logger.Debug().Err(readErr).Msg("No previous artifact to compare against")
		} else {
			result.previous = previous
		}
	}

	if r.renderReport {
		if err = result.RenderText(r.out); err != nil {
			return err
		}
	}

	if err = report.WriteArtifact(result.ArtifactPath, result.Analysis, result.Score); err != nil {
		return err
	}
	logger.Debug().Str("path", result.ArtifactPath).Msg("Artifact saved")

	return nil
}
