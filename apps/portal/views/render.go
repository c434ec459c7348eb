package views

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/labstack/gommon/color"

	"github.com/trezcool/eduportal/core/journal"
	"github.com/trezcool/eduportal/core/school"
)

const (
	emptyList   = "(none)"
	computing   = "computing..."
	gridCellLen = 4
)

func renderTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, emptyList)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

func itoa(n int) string {
	if n == 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func joinInts(ids []int) string {
	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, strconv.Itoa(id))
	}
	return strings.Join(strs, ",")
}

func formatAverage(avg float64) string {
	if avg == 0 {
		return "-"
	}
	return strconv.FormatFloat(avg, 'f', 2, 64)
}

func formatPrediction(pred school.Prediction) string {
	switch pred.Trend {
	case school.TrendUp:
		return fmt.Sprintf("%.1f ↑", pred.PredictedGrade)
	case school.TrendDown:
		return fmt.Sprintf("%.1f ↓", pred.PredictedGrade)
	}
	return fmt.Sprintf("%.1f", pred.PredictedGrade)
}

// paint colors text as a journal cell of color c.
func paint(clr *color.Color, c journal.Color, text string) string {
	switch c {
	case journal.ColorExcellent:
		return clr.Green(text)
	case journal.ColorPoor:
		return clr.Red(text)
	case journal.ColorError:
		return clr.Magenta(text)
	}
	return text
}

// renderGrid prints a journal grid, students by lessons. Cells are padded before coloring to keep columns aligned.
func renderGrid(w io.Writer, clr *color.Color, grid *journal.Grid) {
	if grid == nil || len(grid.Rows) == 0 {
		fmt.Fprintln(w, emptyList)
		return
	}

	nameLen := len("student")
	for _, row := range grid.Rows {
		if n := len([]rune(row.Student.FullName())) + len(strconv.Itoa(row.Student.ID)) + 3; n > nameLen {
			nameLen = n
		}
	}

	var b strings.Builder
	b.WriteString(pad("student", nameLen))
	for _, lsn := range grid.Lessons {
		b.WriteString(" ")
		b.WriteString(pad("#"+strconv.Itoa(lsn.ID), gridCellLen))
	}
	fmt.Fprintln(w, strings.TrimRight(b.String(), " "))

	for _, row := range grid.Rows {
		b.Reset()
		b.WriteString(pad(fmt.Sprintf("%s (%d)", row.Student.FullName(), row.Student.ID), nameLen))
		for _, cell := range row.Cells {
			b.WriteString(" ")
			display := cell.Display
			if display == "" {
				display = "."
			}
			b.WriteString(paint(clr, cell.Color, pad(display, gridCellLen)))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}

	fmt.Fprintln(w)
	for _, lsn := range grid.Lessons {
		line := fmt.Sprintf("#%d %s", lsn.ID, lsn.Date)
		if lsn.Homework != "" {
			line += " - " + lsn.Homework
		}
		fmt.Fprintln(w, line)
	}
}

func pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
