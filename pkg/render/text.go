package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/otherjamesbrown/tmsledger/pkg/stats"
)

// Counts renders one "%7d %s" line per speaker, fewest talks first.
func Counts(t stats.Table) string {
	var b strings.Builder
	for _, s := range t.ByCount() {
		fmt.Fprintf(&b, "%7d %s\n", s.Talks, s.Name)
	}
	return b.String()
}

// Ranges renders one line per speaker with the day span and the first and
// last dates, shortest span first.
func Ranges(t stats.Table) string {
	var b strings.Builder
	for _, s := range t.ByRange() {
		fmt.Fprintf(&b, "%7d %-23s %s - %s\n", s.DayRange, s.Name, s.First, s.Last)
	}
	return b.String()
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
)

// CountsTable renders the counts report as a bordered terminal table.
func CountsTable(t stats.Table) string {
	rows := make([][]string, 0, len(t))
	for _, s := range t.ByCount() {
		rows = append(rows, []string{strconv.Itoa(s.Talks), s.Name})
	}
	return newTable([]string{"Talks", "Speaker"}, rows)
}

// RangesTable renders the ranges report as a bordered terminal table.
func RangesTable(t stats.Table) string {
	rows := make([][]string, 0, len(t))
	for _, s := range t.ByRange() {
		rows = append(rows, []string{strconv.Itoa(s.DayRange), s.Name, s.First.String(), s.Last.String()})
	}
	return newTable([]string{"Days", "Speaker", "First", "Last"}, rows)
}

func newTable(headers []string, rows [][]string) string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return numberStyle
			default:
				return cellStyle
			}
		})
	return tbl.Render() + "\n"
}
