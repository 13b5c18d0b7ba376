package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"marketseq/internal/nn"
)

const (
	colorLoss       = "#3b82f6"
	colorTrainError = "#34d399"
	colorValError   = "#fbbf24"
	colorPrediction = "#f472b6"

	chartWidthPx  = 1100
	chartHeightPx = 420
)

// TrainingCurves renders a run's history as a standalone HTML page of line
// charts: the training loss curve, the train/validation error curves, and
// the final-epoch prediction trace.
func TrainingCurves(history *nn.History, title, outPath string) error {
	if history == nil || len(history.Records) == 0 {
		return fmt.Errorf("no epoch records to render")
	}

	epochs := make([]string, len(history.Records))
	lossData := make([]opts.LineData, len(history.Records))
	trainErrData := make([]opts.LineData, len(history.Records))
	valErrData := make([]opts.LineData, len(history.Records))
	for i, rec := range history.Records {
		epochs[i] = strconv.Itoa(rec.Epoch)
		lossData[i] = opts.LineData{Value: rec.Loss}
		trainErrData[i] = opts.LineData{Value: rec.TrainError}
		valErrData[i] = opts.LineData{Value: rec.ValError}
	}

	lossChart := newLineChart(fmt.Sprintf("%s — Training Loss", title), "Epoch", "Loss")
	lossChart.SetXAxis(epochs)
	lossChart.AddSeries("Loss", lossData,
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorLoss, Width: 2}))

	errorChart := newLineChart(fmt.Sprintf("%s — Mean Absolute Error", title), "Epoch", "MAE")
	errorChart.SetXAxis(epochs)
	errorChart.AddSeries("Train", trainErrData,
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorTrainError, Width: 2}))
	errorChart.AddSeries("Validation", valErrData,
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorValError, Width: 2}))

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(lossChart, errorChart)

	if len(history.PredictionTrace) > 0 {
		days := make([]string, len(history.PredictionTrace))
		predData := make([]opts.LineData, len(history.PredictionTrace))
		for i, v := range history.PredictionTrace {
			days[i] = strconv.Itoa(i)
			predData[i] = opts.LineData{Value: v}
		}
		predChart := newLineChart(fmt.Sprintf("%s — Final Epoch Predictions", title), "Day", "Prediction")
		predChart.SetXAxis(days)
		predChart.AddSeries("Prediction", predData,
			charts.WithLineStyleOpts(opts.LineStyle{Color: colorPrediction, Width: 1}))
		page.AddCharts(predChart)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	file, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create report file %q: %w", outPath, err)
	}
	defer file.Close()

	if err := page.Render(file); err != nil {
		return fmt.Errorf("render training curves: %w", err)
	}
	return nil
}

func newLineChart(title, xName, yName string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  fmt.Sprintf("%dpx", chartWidthPx),
			Height: fmt.Sprintf("%dpx", chartHeightPx),
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Left: "left"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "5%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: xName}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName, Scale: opts.Bool(true)}),
	)
	return line
}
