package app

import (
	"context"
	"io"
	"time"

	"gopulse/domain/core"
	"gopulse/domain/stats"
	"gopulse/internal"
	"gopulse/internal/analysis"
	"gopulse/internal/lessons"
	"gopulse/internal/profiling"
	"gopulse/internal/testkit"
	"gopulse/ports"

	"golang.org/x/sync/errgroup"
)

// maxColumnWorkers bounds the per-column fan-out in DescribeTable
const maxColumnWorkers = 4

// AnalysisService is the single entry point the dashboard, the JSON API and
// the CLI use to run analyses. It holds no per-request state.
type AnalysisService struct {
	kit     *testkit.TestKit
	catalog *lessons.Catalog
	reader  ports.TableReader
	shapes  *profiling.DistributionAnalyzer
	logger  *internal.Logger
}

// Prediction is a fitted line evaluated at one x.
type Prediction struct {
	Fit stats.LinearFit `json:"fit"`
	X   float64         `json:"x"`
	Y   float64         `json:"y"`
}

// TableSummary describes every numeric column of an uploaded table.
type TableSummary struct {
	Source    string                `json:"source"`
	Rows      int                   `json:"rows"`
	Headers   []string              `json:"headers"`
	Columns   []stats.ColumnSummary `json:"columns"`
	RuntimeMs int64                 `json:"runtime_ms"`
}

// DistortionResult backs the laid-versus-hung lesson.
type DistortionResult struct {
	ID          core.ID            `json:"id"`
	CreatedAt   core.Timestamp     `json:"created_at"`
	Lesson      lessons.Lesson     `json:"lesson"`
	Laid        stats.Sample       `json:"laid"`
	Hung        stats.Sample       `json:"hung"`
	Comparison  stats.Comparison   `json:"comparison"`
	Assessments []stats.Assessment `json:"assessments,omitempty"`
	LaidShape   stats.Shape        `json:"laid_shape"`
	HungShape   stats.Shape        `json:"hung_shape"`
}

// TorqueResult backs the torque/tension regression lesson.
type TorqueResult struct {
	ID         core.ID            `json:"id"`
	CreatedAt  core.Timestamp     `json:"created_at"`
	Lesson     lessons.Lesson     `json:"lesson"`
	Data       stats.PairedSample `json:"data"`
	Fit        stats.LinearFit    `json:"fit"`
	Residuals  []float64          `json:"residuals"`
	Prediction Prediction         `json:"prediction"`
	Assessment *stats.Assessment  `json:"assessment,omitempty"`
}

// SensorResult backs the single-reading threshold lesson.
type SensorResult struct {
	ID         core.ID          `json:"id"`
	CreatedAt  core.Timestamp   `json:"created_at"`
	Lesson     lessons.Lesson   `json:"lesson"`
	Assessment stats.Assessment `json:"assessment"`
}

// NewAnalysisService wires the example kit, lesson catalog and table reader.
func NewAnalysisService(kit *testkit.TestKit, catalog *lessons.Catalog, reader ports.TableReader, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{
		kit:     kit,
		catalog: catalog,
		reader:  reader,
		shapes:  profiling.NewDistributionAnalyzer(),
		logger:  logger,
	}
}

// Catalog exposes the lesson catalog for navigation.
func (s *AnalysisService) Catalog() *lessons.Catalog {
	return s.catalog
}

// Kit exposes the example data kit.
func (s *AnalysisService) Kit() *testkit.TestKit {
	return s.kit
}

// Describe computes GroupStats for one sample.
func (s *AnalysisService) Describe(ctx context.Context, sample stats.Sample) (stats.GroupStats, error) {
	if err := ctx.Err(); err != nil {
		return stats.GroupStats{}, err
	}
	return analysis.ComputeGroupStats(sample)
}

// Shape profiles the distribution of one sample.
func (s *AnalysisService) Shape(ctx context.Context, sample stats.Sample) (stats.Shape, error) {
	if err := ctx.Err(); err != nil {
		return stats.Shape{}, err
	}
	return s.shapes.AnalyzeShape(sample)
}

// Fit computes the least-squares line through pair.
func (s *AnalysisService) Fit(ctx context.Context, pair stats.PairedSample) (stats.LinearFit, error) {
	if err := ctx.Err(); err != nil {
		return stats.LinearFit{}, err
	}
	return analysis.ComputeLinearFit(pair)
}

// Predict fits pair and evaluates the line at x.
func (s *AnalysisService) Predict(ctx context.Context, pair stats.PairedSample, x float64) (Prediction, error) {
	fit, err := s.Fit(ctx, pair)
	if err != nil {
		return Prediction{}, err
	}
	return PredictFromFit(fit, x), nil
}

// PredictFromFit evaluates an existing fit at x.
func PredictFromFit(fit stats.LinearFit, x float64) Prediction {
	return Prediction{Fit: fit, X: x, Y: analysis.Predict(fit, x)}
}

// Compare runs the Welch comparison of a against b.
func (s *AnalysisService) Compare(ctx context.Context, a, b stats.Sample) (stats.Comparison, error) {
	if err := ctx.Err(); err != nil {
		return stats.Comparison{}, err
	}
	return analysis.CompareGroups(a, b)
}

// ReadTable parses an upload with the configured reader.
func (s *AnalysisService) ReadTable(ctx context.Context, name string, r io.Reader) (ports.TableSource, error) {
	return s.reader.ReadTable(ctx, name, r)
}

// DescribeTable summarises every numeric column concurrently. A column that
// cannot be summarised carries its error instead of failing the table.
func (s *AnalysisService) DescribeTable(ctx context.Context, name string, table ports.TableSource) (TableSummary, error) {
	start := time.Now()
	headers := table.NumericHeaders()
	if len(headers) == 0 {
		return TableSummary{}, core.NewInvalidInputError(name, "no numeric columns")
	}

	// each worker owns one slot
	summaries := make([]stats.ColumnSummary, len(headers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxColumnWorkers)
	for i, header := range headers {
		i, header := i, header
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			summaries[i] = s.summarizeColumn(table, header)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return TableSummary{}, err
	}

	runtime := time.Since(start).Milliseconds()
	s.logger.Debug("described %d columns of %s in %dms", len(summaries), name, runtime)

	return TableSummary{
		Source:    name,
		Rows:      table.RowCount(),
		Headers:   table.Headers(),
		Columns:   summaries,
		RuntimeMs: runtime,
	}, nil
}

func (s *AnalysisService) summarizeColumn(table ports.TableSource, header string) stats.ColumnSummary {
	summary := stats.ColumnSummary{Name: header}

	sample, err := table.NumericColumn(header)
	if err != nil {
		summary.Error = err.Error()
		return summary
	}
	gs, err := analysis.ComputeGroupStats(sample)
	if err != nil {
		summary.Error = err.Error()
		return summary
	}
	summary.Stats = gs

	if sample.Len() >= profiling.MinShapeSize {
		if shape, err := s.shapes.AnalyzeShape(sample); err == nil {
			summary.Shape = &shape
		}
	}
	return summary
}

// DistortionLesson compares the laid and hung runout groups and grades each
// group mean against the lesson's limit.
func (s *AnalysisService) DistortionLesson(ctx context.Context) (*DistortionResult, error) {
	lesson, err := s.catalog.Get("distortion")
	if err != nil {
		return nil, err
	}

	laid, hung := s.kit.DistortionGroups()
	cmp, err := s.Compare(ctx, laid, hung)
	if err != nil {
		return nil, err
	}

	result := &DistortionResult{
		ID:         core.NewID(),
		CreatedAt:  core.Now(),
		Lesson:     lesson,
		Laid:       laid,
		Hung:       hung,
		Comparison: cmp,
	}

	if lesson.HasLimit() {
		for _, group := range []stats.GroupStats{cmp.A, cmp.B} {
			a, err := analysis.Assess(group.Label+" "+lesson.Metric, group.Mean, *lesson.Limit, lesson.Direction)
			if err != nil {
				return nil, err
			}
			result.Assessments = append(result.Assessments, a)
		}
	}

	if result.LaidShape, err = s.shapes.AnalyzeShape(laid); err != nil {
		return nil, err
	}
	if result.HungShape, err = s.shapes.AnalyzeShape(hung); err != nil {
		return nil, err
	}

	s.logger.With("lesson", lesson.Slug).Debug("p=%.4f d=%.2f", cmp.PValue, cmp.CohensD)
	return result, nil
}

// TorqueLesson fits the generated torque/tension data and predicts the
// tension at torque. A nil torque uses the lesson's default.
func (s *AnalysisService) TorqueLesson(ctx context.Context, torque *float64) (*TorqueResult, error) {
	lesson, err := s.catalog.Get("torque")
	if err != nil {
		return nil, err
	}

	at := lesson.PredictAt
	if torque != nil {
		at = *torque
	}

	data, err := s.kit.TorqueTension(ctx)
	if err != nil {
		return nil, err
	}
	fit, err := s.Fit(ctx, data)
	if err != nil {
		return nil, err
	}

	prediction := PredictFromFit(fit, at)
	result := &TorqueResult{
		ID:         core.NewID(),
		CreatedAt:  core.Now(),
		Lesson:     lesson,
		Data:       data,
		Fit:        fit,
		Residuals:  analysis.Residuals(fit, data),
		Prediction: prediction,
	}

	if lesson.HasLimit() {
		a, err := analysis.Assess(lesson.Metric, prediction.Y, *lesson.Limit, lesson.Direction)
		if err != nil {
			return nil, err
		}
		result.Assessment = &a
	}

	s.logger.With("lesson", lesson.Slug).Debug("slope=%.4f r=%.3f at=%.1f", fit.Slope, fit.Correlation, at)
	return result, nil
}

// SensorLesson grades the lesson's fixed reading against its threshold.
// A non-nil reading replaces the catalog value.
func (s *AnalysisService) SensorLesson(ctx context.Context, reading *float64) (*SensorResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lesson, err := s.catalog.Get("sensor")
	if err != nil {
		return nil, err
	}
	if lesson.Value == nil || lesson.Limit == nil {
		return nil, core.NewInvalidInputError("lesson sensor", "needs a value and a limit")
	}

	value := *lesson.Value
	if reading != nil {
		value = *reading
	}

	a, err := analysis.Assess(lesson.Metric, value, *lesson.Limit, lesson.Direction)
	if err != nil {
		return nil, err
	}
	return &SensorResult{
		ID:         core.NewID(),
		CreatedAt:  core.Now(),
		Lesson:     lesson,
		Assessment: a,
	}, nil
}
