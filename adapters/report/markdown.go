package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"gopulse/app"
	"gopulse/domain/stats"

	"github.com/nao1215/markdown"
)

// significance is the alpha the report calls a difference real at
const significance = 0.05

// Lessons is everything one report covers. Nil sections are skipped.
type Lessons struct {
	GeneratedAt time.Time
	Seed        int64
	Distortion  *app.DistortionResult
	Torque      *app.TorqueResult
	Sensor      *app.SensorResult
}

// MarkdownWriter outputs lesson results in Markdown format.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// Write outputs the full report and returns the number of bytes produced.
func (w *MarkdownWriter) Write(l Lessons) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, l)
	if l.Distortion != nil {
		w.writeDistortion(md, l.Distortion)
	}
	if l.Torque != nil {
		w.writeTorque(md, l.Torque)
	}
	if l.Sensor != nil {
		w.writeSensor(md, l.Sensor)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, l Lessons) {
	md.H1("CPE-Pulse Lesson Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", l.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST")},
			{"Example seed", strconv.FormatInt(l.Seed, 10)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeDistortion(md *markdown.Markdown, r *app.DistortionResult) {
	md.H2(r.Lesson.Title)
	md.PlainText("")
	md.PlainText(r.Lesson.Summary)
	md.PlainText("")

	w.writeGroupTable(md, r.Lesson.Unit, r.Comparison.A, r.Comparison.B)

	c := r.Comparison
	md.Table(markdown.TableSet{
		Header: []string{"Welch t-test", "Value"},
		Rows: [][]string{
			{"Mean difference", formatFloat(c.MeanDifference, 2)},
			{"t", formatFloat(c.TStatistic, 3)},
			{"Degrees of freedom", formatFloat(c.DegreesFreedom, 1)},
			{"p-value", formatP(c.PValue)},
			{"Cohen's d", formatFloat(c.CohensD, 2)},
		},
	})
	md.PlainText("")

	if c.Significant(significance) {
		md.Importantf("%s and %s differ by %.2f %s (p %s).", c.A.Label, c.B.Label, c.MeanDifference, r.Lesson.Unit, formatP(c.PValue))
	} else {
		md.Note("The difference between the groups could be chance.")
	}
	md.PlainText("")

	w.writeAssessments(md, r.Assessments...)

	if len(r.LaidShape.Outliers) > 0 || len(r.LaidShape.Extremes) > 0 {
		outlying := append(append([]float64{}, r.LaidShape.Outliers...), r.LaidShape.Extremes...)
		md.Warningf("%s has outlying parts: %v", r.Laid.Label, outlying)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeTorque(md *markdown.Markdown, r *app.TorqueResult) {
	md.H2(r.Lesson.Title)
	md.PlainText("")
	md.PlainText(r.Lesson.Summary)
	md.PlainText("")

	f := r.Fit
	md.Table(markdown.TableSet{
		Header: []string{"Fit", "Value"},
		Rows: [][]string{
			{"Points", strconv.Itoa(f.N)},
			{"Slope", formatFloat(f.Slope, 4) + " " + r.Lesson.Unit + " per N·m"},
			{"Intercept", formatFloat(f.Intercept, 3)},
			{"Correlation r", formatFloat(f.Correlation, 4)},
			{"R²", formatFloat(f.RSquared, 4)},
			{"Slope p-value", formatP(f.SlopePValue)},
		},
	})
	md.PlainText("")

	md.PlainTextf("At **%.1f N·m** the line predicts **%.2f %s**.", r.Prediction.X, r.Prediction.Y, r.Lesson.Unit)
	md.PlainText("")

	if r.Assessment != nil {
		w.writeAssessments(md, *r.Assessment)
	}
}

func (w *MarkdownWriter) writeSensor(md *markdown.Markdown, r *app.SensorResult) {
	md.H2(r.Lesson.Title)
	md.PlainText("")
	md.PlainText(r.Lesson.Summary)
	md.PlainText("")
	w.writeAssessments(md, r.Assessment)
}

func (w *MarkdownWriter) writeGroupTable(md *markdown.Markdown, unit string, groups ...stats.GroupStats) {
	rows := make([][]string, len(groups))
	for i, g := range groups {
		sd, cv := formatFloat(g.StdDev, 2), formatFloat(g.CV(), 2)
		if !g.StdDevDefined {
			sd, cv = "-", "-"
		}
		rows[i] = []string{
			g.Label,
			strconv.Itoa(g.Count),
			formatFloat(g.Mean, 2),
			sd,
			cv,
			formatFloat(g.Median, 1),
			fmt.Sprintf("%s – %s", formatFloat(g.Min, 1), formatFloat(g.Max, 1)),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Group", "n", "Mean (" + unit + ")", "Std dev", "CV", "Median", "Range"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeAssessments(md *markdown.Markdown, assessments ...stats.Assessment) {
	if len(assessments) == 0 {
		return
	}

	rows := make([][]string, len(assessments))
	for i, a := range assessments {
		rows[i] = []string{
			a.Metric,
			formatFloat(a.Value, 2),
			formatFloat(a.Limit, 2),
			string(a.Status),
			formatFloat(a.Margin, 2),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Check", "Value", "Limit", "Status", "Margin"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, a := range assessments {
		if !a.Passed() {
			md.Cautionf("%s is out of limit by %.2f.", a.Metric, -a.Margin)
			md.PlainText("")
		}
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by gopulse*")
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func formatP(p float64) string {
	if p < 0.0001 {
		return "< 0.0001"
	}
	return strconv.FormatFloat(p, 'f', 4, 64)
}
