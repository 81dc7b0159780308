package component

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/robgonnella/aegis/internal/ui/style"
)

// Modal dialog shown over the current page
type Modal struct {
	root *tview.Modal
}

func newModal(message string, accent tcell.Color, labels []string, actions map[string]func()) *Modal {
	modal := tview.NewModal().
		SetText(message).
		AddButtons(labels).
		SetDoneFunc(func(_ int, label string) {
			if fn, ok := actions[label]; ok {
				fn()
			}
		})

	modal.SetBackgroundColor(style.ColorDefault).
		SetTextColor(style.ColorPurple).
		SetButtonBackgroundColor(accent).
		SetButtonTextColor(style.ColorBlack).
		SetBorderColor(accent)

	modal.SetButtonActivatedStyle(style.StyleDefault.Background(accent))

	return &Modal{root: modal}
}

// NewConfirmModal asks before running a disruptive action such as clearing
// the device store or isolating every device
func NewConfirmModal(message string, onConfirm, onCancel func()) *Modal {
	return newModal(
		message,
		style.ColorLightGreen,
		[]string{"Confirm", "Cancel"},
		map[string]func(){
			"Confirm": onConfirm,
			"Cancel":  onCancel,
		},
	)
}

// NewErrorModal reports a failed action
func NewErrorModal(err error, onDismiss func()) *Modal {
	return newModal(
		fmt.Sprintf("Error: %s", err),
		style.ColorRed,
		[]string{"OK"},
		map[string]func(){"OK": onDismiss},
	)
}

// Primitive returns the root primitive for Modal
func (m *Modal) Primitive() tview.Primitive {
	return m.root
}
