package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"budgetbook/internal/core"
	"budgetbook/internal/services"
)

var (
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa")).Bold(true)
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
)

// Renderer writes command output. Amounts carry the configured currency
// symbol and two decimals.
type Renderer struct {
	out    io.Writer
	symbol string
}

func NewRenderer(out io.Writer, symbol string) *Renderer {
	return &Renderer{out: out, symbol: symbol}
}

// Optional formats an amount that may be absent. Absent renders as an
// empty string, never as zero.
func (r *Renderer) Optional(m core.Money, ok bool) string {
	if !ok {
		return ""
	}
	return r.money(m)
}

func (r *Renderer) money(m core.Money) string {
	s := m.Format(r.symbol)
	if m.Cents < 0 {
		return negativeStyle.Render(s)
	}
	return s
}

// Dashboard prints the four figures for today.
func (r *Renderer) Dashboard(d services.Dashboard) {
	rows := [][2]string{
		{"Week", fmt.Sprintf("%s .. %s", d.WeekStart, d.WeekEnd)},
		{"Monthly expenses", r.money(d.MonthTotal)},
		{"Weekly expenses", r.money(d.WeekTotal)},
		{"Weekly budget", r.Optional(d.Budget, d.HasBudget)},
		{"Remaining", r.Optional(d.Remaining, d.HasBudget)},
	}
	for _, row := range rows {
		fmt.Fprintf(r.out, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-17s", row[0]+":")), row[1])
	}
}

// Entries prints entries as a table in the order given.
func (r *Renderer) Entries(entries []core.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(r.out, labelStyle.Render("No entries."))
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.OccurredOn.String(),
			e.Kind,
			e.Category,
			r.money(e.Amount),
			e.Notes,
		})
	}
	r.table([]string{"ID", "Date", "Kind", "Category", "Amount", "Notes"}, rows)
}

// Budgets prints weekly allocations, newest first.
func (r *Renderer) Budgets(budgets []core.WeeklyBudget) {
	if len(budgets) == 0 {
		fmt.Fprintln(r.out, labelStyle.Render("No weekly budgets."))
		return
	}
	rows := make([][]string, 0, len(budgets))
	for _, b := range budgets {
		rows = append(rows, []string{
			b.WeekStart.String(),
			core.WeekEndFor(b.WeekStart).String(),
			r.money(b.Amount),
		})
	}
	r.table([]string{"Week start", "Week end", "Budget"}, rows)
}

// Entry confirms a recorded entry.
func (r *Renderer) Entry(e core.Entry) {
	fmt.Fprintf(r.out, "Recorded #%d: %s / %s %s on %s\n", e.ID, e.Kind, e.Category, r.money(e.Amount), e.OccurredOn)
}

// Line prints a plain message.
func (r *Renderer) Line(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *Renderer) table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		})
	fmt.Fprintln(r.out, t.String())
}
