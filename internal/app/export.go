package app

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"swap-warden/internal/ledger"
)

// Export renders ledger history across all agents as CSV and/or a PNG chart,
// one data point per UTC day.
func (a *App) Export(_ context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}
	if opts.To.Before(opts.From) {
		return errors.New("from date must not be after to date")
	}

	agents := a.agentNames()

	var days []ledger.DailyStats
	for day := opts.From; !day.After(opts.To); day = day.AddDate(0, 0, 1) {
		stats, err := ledger.CollectStats(a.Config.Ledger.BaseDir, agents, day.Format(ledger.DateFormat), a.Logger)
		if err != nil {
			return err
		}
		days = append(days, stats)
	}

	a.Logger.Info().Int("days", len(days)).Msg("exporting ledger history")

	if opts.CSVPath != "" {
		if err := writeStatsCSV(opts.CSVPath, days); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeStatsPNG(opts.PNGPath, days); err != nil {
			return err
		}
	}

	return nil
}

func writeStatsCSV(path string, days []ledger.DailyStats) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"date", "total_tx", "success_tx", "failed_tx", "pending_tx", "volume_usd"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, day := range days {
		record := []string{
			day.Date,
			strconv.Itoa(day.TotalTx),
			strconv.Itoa(day.SuccessTx),
			strconv.Itoa(day.FailedTx),
			strconv.Itoa(day.PendingTx),
			day.TotalVolumeUSD.StringFixed(2),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeStatsPNG(path string, days []ledger.DailyStats) error {
	// The chart renderer needs at least two points per series.
	if len(days) < 2 {
		return errors.New("png export needs a range of at least two days")
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(days))
	volume := make([]float64, len(days))
	failed := make([]float64, len(days))

	for i, day := range days {
		parsed, err := time.Parse(ledger.DateFormat, day.Date)
		if err != nil {
			return err
		}
		x[i] = parsed
		volume[i] = day.TotalVolumeUSD.InexactFloat64()
		failed[i] = float64(day.FailedTx)
	}

	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Volume (USD)",
		},
		YAxisSecondary: chart.YAxis{
			Name: "Failed trades",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Volume",
				XValues: x,
				YValues: volume,
			},
			chart.TimeSeries{
				Name:    "Failed",
				XValues: x,
				YValues: failed,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
