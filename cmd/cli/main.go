package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopulse/adapters/excel"
	"gopulse/adapters/report"
	"gopulse/app"
	"gopulse/domain/core"
	"gopulse/domain/stats"
	"gopulse/internal/config"
	"gopulse/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// cli carries what every subcommand needs; service is built lazily so tests
// can inject their own
type cli struct {
	service *app.AnalysisService
	reader  *excel.DataReader
	asJSON  bool
}

func main() {
	if err := newRootCmd(&cli{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gopulse-cli",
		Short:         "Descriptive statistics, line fits and group comparisons from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.Context())
		},
	}
	rootCmd.PersistentFlags().BoolVar(&c.asJSON, "json", false, "Print the result as a JSON report envelope")

	rootCmd.AddCommand(
		newStatsCmd(c),
		newFitCmd(c),
		newPredictCmd(c),
		newCompareCmd(c),
		newDescribeCmd(c),
		newLessonsCmd(c),
		newReportCmd(c),
	)
	return rootCmd
}

func (c *cli) setup(ctx context.Context) error {
	if c.service != nil {
		return nil
	}
	_ = godotenv.Load()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	appContainer, err := container.New(appConfig)
	if err != nil {
		return err
	}
	if err := appContainer.Init(ctx); err != nil {
		return err
	}
	c.service = appContainer.Service
	c.reader = appContainer.Reader
	return nil
}

func newStatsCmd(c *cli) *cobra.Command {
	var label, file string

	cmd := &cobra.Command{
		Use:   "stats [values...]",
		Short: "Mean, standard deviation, median and range of one sample",
		Long: `Summarise one sample given inline or as a column of a CSV/XLSX file.

Example: gopulse-cli stats 14 12 27 9 --label Laid
         gopulse-cli stats --file runout.csv runout_thou`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, err := c.sampleFrom(cmd.Context(), file, label, args)
			if err != nil {
				return err
			}
			return c.runStats(cmd.Context(), cmd.OutOrStdout(), sample)
		},
	}

	cmd.Flags().StringVar(&label, "label", "Sample", "Label for inline values")
	cmd.Flags().StringVar(&file, "file", "", "CSV or XLSX file; the argument names the column")
	return cmd
}

func (c *cli) runStats(ctx context.Context, out io.Writer, sample stats.Sample) error {
	gs, err := c.service.Describe(ctx, sample)
	if err != nil {
		return err
	}
	if c.asJSON {
		return writeJSON(out, core.NewReport(core.ReportGroupStats, gs))
	}
	printGroup(out, gs)

	if sample.Len() >= 4 {
		shape, err := c.service.Shape(ctx, sample)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Q1/Q3:    %.3f / %.3f (IQR %.3f)\n", shape.Q1, shape.Q3, shape.IQR)
		fmt.Fprintf(out, "Skewness: %.3f, excess kurtosis %.3f\n", shape.Skewness, shape.Kurtosis)
		if len(shape.Outliers) > 0 {
			fmt.Fprintf(out, "Outliers: %v\n", shape.Outliers)
		}
	}
	return nil
}

func newFitCmd(c *cli) *cobra.Command {
	var xs, ys, file string

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Least-squares line through paired x/y values",
		Long: `Fit y = slope*x + intercept.

Example: gopulse-cli fit --x 20,40,60 --y 8.1,16,23.9
         gopulse-cli fit --file bolts.csv --x torque --y tension`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pair, err := c.pairFrom(cmd.Context(), file, xs, ys)
			if err != nil {
				return err
			}
			fit, err := c.service.Fit(cmd.Context(), pair)
			if err != nil {
				return err
			}
			if c.asJSON {
				return writeJSON(cmd.OutOrStdout(), core.NewReport(core.ReportLinearFit, fit))
			}
			printFit(cmd.OutOrStdout(), fit)
			return nil
		},
	}

	addPairFlags(cmd, &xs, &ys, &file)
	return cmd
}

func newPredictCmd(c *cli) *cobra.Command {
	var xs, ys, file string
	var at float64

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Fit paired values and evaluate the line at --at",
		Long: `Example: gopulse-cli predict --x 20,40,60 --y 8.1,16,23.9 --at 80
         gopulse-cli predict --file bolts.csv --x torque --y tension --at 80`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFinite("at", at); err != nil {
				return err
			}
			pair, err := c.pairFrom(cmd.Context(), file, xs, ys)
			if err != nil {
				return err
			}
			p, err := c.service.Predict(cmd.Context(), pair, at)
			if err != nil {
				return err
			}
			if c.asJSON {
				return writeJSON(cmd.OutOrStdout(), core.NewReport(core.ReportPrediction, p))
			}
			printFit(cmd.OutOrStdout(), p.Fit)
			fmt.Fprintf(cmd.OutOrStdout(), "Predicted y at x=%g: %.4f\n", p.X, p.Y)
			return nil
		},
	}

	addPairFlags(cmd, &xs, &ys, &file)
	cmd.Flags().Float64Var(&at, "at", 0, "x value to predict at")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func addPairFlags(cmd *cobra.Command, xs, ys, file *string) {
	cmd.Flags().StringVar(xs, "x", "", "Comma-separated x values, or the x column with --file")
	cmd.Flags().StringVar(ys, "y", "", "Comma-separated y values, or the y column with --file")
	cmd.Flags().StringVar(file, "file", "", "CSV or XLSX file to read the columns from")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
}

func newCompareCmd(c *cli) *cobra.Command {
	var as, bs, aLabel, bLabel string
	var example bool

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Welch t-test between two groups",
		Long: `Compare two group means.

Example: gopulse-cli compare --a 14,12,27 --b 7,8,6
         gopulse-cli compare --example   (laid versus hung runout)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var a, b stats.Sample
			if example {
				a, b = c.service.Kit().DistortionGroups()
			} else {
				av, err := parseValues([]string{as})
				if err != nil {
					return err
				}
				bv, err := parseValues([]string{bs})
				if err != nil {
					return err
				}
				a, b = stats.NewSample(aLabel, av), stats.NewSample(bLabel, bv)
			}

			cmp, err := c.service.Compare(cmd.Context(), a, b)
			if err != nil {
				return err
			}
			if c.asJSON {
				return writeJSON(cmd.OutOrStdout(), core.NewReport(core.ReportComparison, cmp))
			}
			printComparison(cmd.OutOrStdout(), cmp)
			return nil
		},
	}

	cmd.Flags().StringVar(&as, "a", "", "Comma-separated values of group A")
	cmd.Flags().StringVar(&bs, "b", "", "Comma-separated values of group B")
	cmd.Flags().StringVar(&aLabel, "a-label", "A", "Label of group A")
	cmd.Flags().StringVar(&bLabel, "b-label", "B", "Label of group B")
	cmd.Flags().BoolVar(&example, "example", false, "Use the built-in laid/hung runout groups")
	cmd.MarkFlagsRequiredTogether("a", "b")
	cmd.MarkFlagsMutuallyExclusive("a", "example")
	return cmd
}

func newDescribeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [file]",
		Short: "Summarise every numeric column of a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := c.reader.ReadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			summary, err := c.service.DescribeTable(cmd.Context(), table.Name, table)
			if err != nil {
				return err
			}
			if c.asJSON {
				return writeJSON(cmd.OutOrStdout(), core.NewReport(core.ReportTable, summary))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d rows, %d numeric columns (%dms)\n\n", summary.Source, summary.Rows, len(summary.Columns), summary.RuntimeMs)
			for _, col := range summary.Columns {
				if col.Error != "" {
					fmt.Fprintf(out, "%-20s skipped: %s\n", col.Name, col.Error)
					continue
				}
				fmt.Fprintf(out, "%-20s n=%-5d mean=%-10.4g sd=%-10.4g min=%-10.4g max=%.4g\n",
					col.Name, col.Stats.Count, col.Stats.Mean, col.Stats.StdDev, col.Stats.Min, col.Stats.Max)
			}
			return nil
		},
	}
}

func newLessonsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "lessons",
		Short: "List the lesson catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := c.service.Catalog()
			if c.asJSON {
				return writeJSON(cmd.OutOrStdout(), catalog.All())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog: %s\n", catalog.Source)
			for _, l := range catalog.All() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-12s %-11s %s\n", l.Slug, l.Kind, l.Title)
			}
			return nil
		},
	}
}

func newReportCmd(c *cli) *cobra.Command {
	var output string
	var torque float64

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run every lesson and write a Markdown report",
		Long: `Example: gopulse-cli report --output lessons.md --torque 90`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var at *float64
			if cmd.Flags().Changed("torque") {
				if err := requireFinite("torque", torque); err != nil {
					return err
				}
				at = &torque
			}
			return c.runReport(cmd.Context(), cmd.OutOrStdout(), output, at)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().Float64Var(&torque, "torque", 0, "Torque to predict tension at (defaults to the lesson's)")
	return cmd
}

func (c *cli) runReport(ctx context.Context, out io.Writer, output string, torque *float64) error {
	distortion, err := c.service.DistortionLesson(ctx)
	if err != nil {
		return err
	}
	torqueResult, err := c.service.TorqueLesson(ctx, torque)
	if err != nil {
		return err
	}
	sensor, err := c.service.SensorLesson(ctx, nil)
	if err != nil {
		return err
	}

	lessons := report.Lessons{
		GeneratedAt: time.Now().UTC(),
		Seed:        c.service.Kit().Seed(),
		Distortion:  distortion,
		Torque:      torqueResult,
		Sensor:      sensor,
	}

	if c.asJSON {
		return writeJSON(out, core.NewReport(core.ReportLesson, lessons))
	}

	w := out
	if output != "" {
		f, err := os.Create(output) //nolint:gosec // operator-chosen output path
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	n, err := report.NewMarkdownWriter(w).Write(lessons)
	if err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(out, "Report saved to %s (%d bytes)\n", output, n)
	}
	return nil
}

// sampleFrom reads a sample from a file column when file is set, otherwise
// from the inline arguments
func (c *cli) sampleFrom(ctx context.Context, file, label string, args []string) (stats.Sample, error) {
	if file != "" {
		if len(args) != 1 {
			return stats.Sample{}, fmt.Errorf("--file needs exactly one column name")
		}
		table, err := c.reader.ReadFile(ctx, file)
		if err != nil {
			return stats.Sample{}, err
		}
		return table.NumericColumn(args[0])
	}

	values, err := parseValues(args)
	if err != nil {
		return stats.Sample{}, err
	}
	return stats.NewSample(label, values), nil
}

func (c *cli) pairFrom(ctx context.Context, file, xs, ys string) (stats.PairedSample, error) {
	if file != "" {
		table, err := c.reader.ReadFile(ctx, file)
		if err != nil {
			return stats.PairedSample{}, err
		}
		return table.Paired(xs, ys)
	}

	x, err := parseValues([]string{xs})
	if err != nil {
		return stats.PairedSample{}, err
	}
	y, err := parseValues([]string{ys})
	if err != nil {
		return stats.PairedSample{}, err
	}
	return stats.NewPairedSample("x", "y", x, y), nil
}

// parseValues accepts values split by commas, whitespace or both
func parseValues(args []string) ([]float64, error) {
	var values []float64
	for _, arg := range args {
		fields := strings.FieldsFunc(arg, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		})
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, core.NewInvalidInputError("values", fmt.Sprintf("%q is not a number", f))
			}
			if err := requireFinite("values", v); err != nil {
				return nil, err
			}
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil, core.NewInvalidInputError("values", "no values given")
	}
	return values, nil
}

// requireFinite rejects the NaN and Inf spellings strconv accepts
func requireFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return core.NewInvalidInputError(field, fmt.Sprintf("%g is not a finite number", v))
	}
	return nil
}

func printGroup(out io.Writer, gs stats.GroupStats) {
	fmt.Fprintf(out, "%s (n=%d)\n", gs.Label, gs.Count)
	fmt.Fprintf(out, "Mean:     %.4f\n", gs.Mean)
	if gs.StdDevDefined {
		fmt.Fprintf(out, "Std dev:  %.4f\n", gs.StdDev)
		fmt.Fprintf(out, "CV:       %.4f\n", gs.CV())
	} else {
		fmt.Fprintln(out, "Std dev:  undefined for a single value")
	}
	fmt.Fprintf(out, "Median:   %.4f\n", gs.Median)
	fmt.Fprintf(out, "Range:    %.4f to %.4f\n", gs.Min, gs.Max)
}

func printFit(out io.Writer, fit stats.LinearFit) {
	fmt.Fprintf(out, "y = %.4fx + %.4f (n=%d)\n", fit.Slope, fit.Intercept, fit.N)
	fmt.Fprintf(out, "r = %.4f, R² = %.4f\n", fit.Correlation, fit.RSquared)
	if fit.N >= 3 {
		fmt.Fprintf(out, "slope std err %.4f, p = %.4g\n", fit.SlopeStdErr, fit.SlopePValue)
	}
}

func printComparison(out io.Writer, cmp stats.Comparison) {
	printGroup(out, cmp.A)
	fmt.Fprintln(out)
	printGroup(out, cmp.B)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Mean difference: %.4f\n", cmp.MeanDifference)
	fmt.Fprintf(out, "Welch t = %.4f, df = %.2f, p = %.4g\n", cmp.TStatistic, cmp.DegreesFreedom, cmp.PValue)
	fmt.Fprintf(out, "Cohen's d = %.3f\n", cmp.CohensD)
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
