package io

import (
	"bufio"
	"fmt"

	plt "github.com/phil-mansfield/pyplot"
	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/golbm"
	"github.com/phil-mansfield/golbm/lbmerr"
)

// WriteHistory writes hist as a three column table of iteration, largest
// fluid speed and total mass.
func WriteHistory(fname string, hist []golbm.HistoryEntry) error {
	err := writeFile(fname, func(wr *bufio.Writer) {
		for _, h := range hist {
			fmt.Fprintf(wr, "%d %.10g %.10g\n", h.Iteration, h.MaxSpeed, h.Mass)
		}
	})
	if err != nil {
		return lbmerr.Wrap(lbmerr.IOError, "WriteHistory", err)
	}
	return nil
}

// ReadHistory reads a table written by WriteHistory.
func ReadHistory(fname string) ([]golbm.HistoryEntry, error) {
	cols, err := table.ReadTable(fname, []int{0, 1, 2}, nil)
	if err != nil {
		return nil, lbmerr.Wrap(lbmerr.IOError, "ReadHistory", err)
	}

	hist := make([]golbm.HistoryEntry, len(cols[0]))
	for i := range hist {
		hist[i] = golbm.HistoryEntry{
			Iteration: int(cols[0][i]), MaxSpeed: cols[1][i], Mass: cols[2][i],
		}
	}
	return hist, nil
}

// PlotHistory queues a log-scale plot of the largest fluid speed against
// iteration which will be saved to fname. Nothing is rendered until
// plt.Execute is called.
func PlotHistory(fname string, hist []golbm.HistoryEntry) error {
	if len(hist) == 0 {
		return lbmerr.IO("PlotHistory", "History for '%s' is empty.", fname)
	}

	its := make([]float64, 0, len(hist))
	speeds := make([]float64, 0, len(hist))
	for _, h := range hist {
		// Zero speeds can't be drawn on a log axis.
		if h.MaxSpeed <= 0 {
			continue
		}
		its = append(its, float64(h.Iteration))
		speeds = append(speeds, h.MaxSpeed)
	}

	plt.Figure()
	plt.Plot(its, speeds, "b", plt.LW(2))
	plt.YScale("log")
	plt.XLabel(`Iteration`, plt.FontSize(16))
	plt.YLabel(`$\max |u|$`, plt.FontSize(16))
	plt.Grid(plt.Axis("y"), plt.Which("both"))
	plt.SaveFig(fname)
	return nil
}
