package component

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/robgonnella/aegis/internal/ui/style"
)

var legendEntries = [][2]string{
	{"s", "scan"},
	{"f", "clear and scan"},
	{"a", "toggle auto scan"},
	{"b", "block / unblock selected"},
	{"B", "block all"},
	{"u", "unblock all"},
	{"n", "nickname selected"},
	{"e", "toggle devices / events"},
}

// Legend lists the key bindings
type Legend struct {
	root *tview.Flex
}

// NewLegend returns a new instance of Legend
func NewLegend() *Legend {
	root := tview.NewFlex().SetDirection(tview.FlexRow)

	for _, entry := range legendEntries {
		text := tview.NewTextView()
		text.SetTextStyle(style.StyleDefault.Attributes(tcell.AttrDim))
		text.SetText(fmt.Sprintf("%q %s", entry[0], entry[1]))
		text.SetBorderPadding(0, 0, 3, 0)

		root.AddItem(text, 1, 1, false)
	}

	return &Legend{root: root}
}

// Primitive returns the root primitive for Legend
func (l *Legend) Primitive() tview.Primitive {
	return l.root
}

// Height returns the number of rows the legend needs
func (l *Legend) Height() int {
	return len(legendEntries)
}
