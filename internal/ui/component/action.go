package component

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/robgonnella/aegis/internal/ui/key"
	"github.com/robgonnella/aegis/internal/ui/style"
)

// ActionInput single line prompt used to collect text for an action
// such as setting a device nickname
type ActionInput struct {
	root     *tview.InputField
	onSubmit func(text string)
	onCancel func()
}

// NewActionInput returns a new instance of ActionInput
func NewActionInput(onSubmit func(text string), onCancel func()) *ActionInput {
	input := tview.NewInputField()
	input.SetBorder(true)
	input.SetFieldStyle(style.StyleDefault.Dim(true))
	input.SetBorderPadding(0, 0, 1, 1)

	input.SetFocusFunc(func() {
		input.SetBorderColor(style.ColorPurple)
	})

	ai := &ActionInput{
		root:     input,
		onSubmit: onSubmit,
		onCancel: onCancel,
	}

	ai.root.SetDoneFunc(func(k tcell.Key) {
		switch k {
		case key.KeyEnter:
			text := ai.root.GetText()
			ai.root.SetText("")
			ai.onSubmit(text)
		case key.KeyEsc:
			ai.root.SetText("")
			ai.onCancel()
		}
	})

	return ai
}

// Prompt sets the label shown before the input
func (ai *ActionInput) Prompt(label string) {
	ai.root.SetLabel(label + " ")
}

// Primitive returns the root primitive for ActionInput
func (ai *ActionInput) Primitive() tview.Primitive {
	return ai.root
}
