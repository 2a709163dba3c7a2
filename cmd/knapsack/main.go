package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/knapsack-trace/internal/export"
	"github.com/eugenenazirov/knapsack-trace/internal/knapsack"
	"github.com/eugenenazirov/knapsack-trace/internal/logging"
	"github.com/eugenenazirov/knapsack-trace/internal/problem"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "knapsack:", err)
		os.Exit(1)
	}
}

type solveOptions struct {
	file        string
	steps       bool
	step        int
	xlsx        string
	maxCapacity int
	maxItems    int
	maxCells    int
}

func run(args []string, stdout, stderr io.Writer) error {
	app := kingpin.New("knapsack", "Solve 0/1 knapsack problems and replay the DP table fill step by step")
	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)
	logLevel := app.Flag("log-level", "Log level (debug, info, warn, error)").Default("warn").String()

	var opts solveOptions
	solveCmd := app.Command("solve", "Solve a problem file (JSON, YAML or TOML) and print the result")
	solveCmd.Arg("file", "Problem file").Required().StringVar(&opts.file)
	solveCmd.Flag("steps", "Print every recorded step").BoolVar(&opts.steps)
	solveCmd.Flag("step", "Print the table snapshot of a single step").Default("-1").IntVar(&opts.step)
	solveCmd.Flag("xlsx", "Write the trace as an XLSX workbook to this path").StringVar(&opts.xlsx)
	solveCmd.Flag("max-capacity", "Largest capacity accepted (0 for unlimited)").Default("1000").IntVar(&opts.maxCapacity)
	solveCmd.Flag("max-items", "Largest item count accepted (0 for unlimited)").Default("100").IntVar(&opts.maxItems)
	solveCmd.Flag("max-trace-cells", "Largest number of table cells held across all step snapshots (0 for unlimited)").Default("4000000").IntVar(&opts.maxCells)

	validateCmd := app.Command("validate", "Check a problem file against the problem schema")
	validateFile := validateCmd.Arg("file", "Problem file").Required().String()

	command, err := app.Parse(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(*logLevel)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	validator, err := problem.NewValidator()
	if err != nil {
		return fmt.Errorf("compile problem schema: %w", err)
	}

	switch command {
	case solveCmd.FullCommand():
		return runSolve(opts, validator, logger, stdout)
	case validateCmd.FullCommand():
		p, err := validator.Load(*validateFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s: ok (%d items, capacity %d)\n", *validateFile, len(p.Items), p.Capacity)
		return nil
	}
	return fmt.Errorf("unknown command %q", command)
}

func runSolve(opts solveOptions, validator *problem.Validator, logger *zap.Logger, stdout io.Writer) error {
	p, err := validator.Load(opts.file)
	if err != nil {
		return err
	}

	limits := knapsack.Limits{
		MaxCapacity:   opts.maxCapacity,
		MaxItems:      opts.maxItems,
		MaxTraceCells: opts.maxCells,
	}
	trace, err := knapsack.New(knapsack.WithLimits(limits)).Solve(context.Background(), p.Capacity, p.Items)
	if err != nil {
		return err
	}
	logger.Debug("trace solved",
		zap.String("file", opts.file),
		zap.Int("steps", len(trace.Steps)),
		zap.Int("max_value", trace.Solution.MaxValue),
	)

	switch {
	case opts.step >= 0:
		cursor := trace.Cursor()
		if err := cursor.Seek(opts.step); err != nil {
			return err
		}
		step, _ := cursor.Current()
		printStep(stdout, step)
		printTable(stdout, step.Table, step.Cell)
	case opts.steps:
		cursor := trace.Cursor()
		for {
			step, _ := cursor.Current()
			printStep(stdout, step)
			if !cursor.Next() {
				break
			}
		}
		fmt.Fprintln(stdout)
		printTable(stdout, trace.Table, nil)
	default:
		printTable(stdout, trace.Table, nil)
	}

	fmt.Fprintln(stdout)
	printSummary(stdout, p, trace)

	if opts.xlsx != "" {
		if err := writeWorkbook(opts.xlsx, trace); err != nil {
			return err
		}
		logger.Info("workbook written", zap.String("path", opts.xlsx))
	}
	return nil
}

func writeWorkbook(path string, trace *knapsack.Trace) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create workbook: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return export.Write(f, trace)
}

func printStep(w io.Writer, step knapsack.Step) {
	fmt.Fprintf(w, "[%d] %s\n", step.Sequence, step.Description)
	if step.Calculation != "" {
		fmt.Fprintf(w, "      %s\n", step.Calculation)
	}
}

// printTable renders the table with the active cell, if any, wrapped in brackets.
func printTable(w io.Writer, table knapsack.Table, active *knapsack.Cell) {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)

	header := make([]string, 0, table.Cols()+1)
	header = append(header, "i\\w")
	for c := 0; c < table.Cols(); c++ {
		header = append(header, strconv.Itoa(c))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")

	for i, row := range table {
		cells := make([]string, 0, len(row)+1)
		cells = append(cells, strconv.Itoa(i))
		for c, v := range row {
			if active != nil && active.I == i && active.W == c {
				cells = append(cells, "["+strconv.Itoa(v)+"]")
				continue
			}
			cells = append(cells, strconv.Itoa(v))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	_ = tw.Flush()
}

func printSummary(w io.Writer, p problem.Problem, trace *knapsack.Trace) {
	summary := trace.Summary()
	if p.Name != "" {
		fmt.Fprintf(w, "Problem:        %s\n", p.Name)
	}
	fmt.Fprintf(w, "Maximum value:  %d\n", summary.MaxValue)
	if len(summary.SelectedIndices) == 0 {
		fmt.Fprintln(w, "Selected items: none")
	} else {
		selected := make([]string, 0, len(summary.SelectedIndices))
		for _, idx := range summary.SelectedIndices {
			item := trace.Items[idx]
			selected = append(selected, fmt.Sprintf("#%d (w=%d, v=%d)", idx+1, item.Weight, item.Value))
		}
		fmt.Fprintf(w, "Selected items: %s\n", strings.Join(selected, ", "))
	}
	fmt.Fprintf(w, "Total weight:   %d / %d\n", summary.TotalWeight, trace.Capacity)
	fmt.Fprintf(w, "Operations:     %d\n", summary.Operations)
	fmt.Fprintf(w, "Table cells:    %d\n", summary.TableCells)
	fmt.Fprintf(w, "Steps:          %d\n", summary.StepCount)
}
