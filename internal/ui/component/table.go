package component

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/robgonnella/aegis/internal/ui/style"
)

// rows 0 and 1 hold the column headers and a spacer
const firstDataRow = 2

func newCell(text string, color tcell.Color) *tview.TableCell {
	return tview.NewTableCell(text).
		SetExpansion(1).
		SetAlign(tview.AlignLeft).
		SetTextColor(color)
}

func createTable(title string, columnHeaders []string) *tview.Table {
	table := tview.NewTable().
		SetBorders(false).
		SetFixed(firstDataRow, 0).
		SetSelectable(true, false).
		SetSelectedStyle(style.StyleDefault.Background(style.ColorLightGreen).Bold(true))

	table.SetBorder(true)
	table.SetBorderPadding(1, 1, 2, 2)

	for c, h := range columnHeaders {
		table.SetCell(0, c, newCell(h, style.ColorPurple).
			SetSelectable(false).
			SetAttributes(tcell.AttrBold))

		table.SetCell(1, c, newCell("", style.ColorPurple).SetSelectable(false))
	}

	table.SetBlurFunc(func() {
		table.SetBorderColor(style.ColorDefault)
	})

	table.SetFocusFunc(func() {
		table.SetBorderColor(style.ColorPurple)
	})

	table.SetTitle(" " + title + " ")
	table.SetTitleColor(style.ColorLightGreen)

	return table
}

// setRow writes one data row. The first column is bold.
func setRow(table *tview.Table, row int, values []string, color tcell.Color) {
	for col, text := range values {
		cell := newCell(text, color)

		if col == 0 {
			cell.SetAttributes(tcell.AttrBold)
		}

		table.SetCell(row, col, cell)
	}
}

// clearRows drops every data row leaving the headers in place
func clearRows(table *tview.Table) {
	for table.GetRowCount() > firstDataRow {
		table.RemoveRow(table.GetRowCount() - 1)
	}
}
