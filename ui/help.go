package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// HelpView represents the keyboard shortcuts help interface
type HelpView struct {
	app       *App
	container *tview.Flex
	textView  *tview.TextView
	isActive  bool
}

const helpText = `[yellow::b]Keyboard Shortcuts[-:-:-]

[lightgreen]Session:[-]
  [white]Space[-]       Start / pause the countdown
  [white]r[-]           Reset to the full duration
  [white]Enter[-]       Select the highlighted track

[lightgreen]Navigation:[-]
  [white]j / k[-]       Move down / up
  [white]gg / G[-]      First / last track
  [white]/[-]           Filter tracks
  [white]?[-]           Show this help panel

[lightgreen]General:[-]
  [white]ESC[-]         Clear filter / Exit program
  [white]Ctrl+C[-]      Exit program

[yellow]Press ESC or ? to close this help panel[-]
`

// NewHelpView creates a new help view
func NewHelpView(app *App) *HelpView {
	hv := &HelpView{
		app: app,
	}

	hv.textView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true).
		SetText(helpText)

	hv.container = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(hv.textView, 0, 1, true)

	hv.container.SetBorder(true).
		SetTitle(" Help (ESC to close) ").
		SetBorderColor(tcell.ColorYellow)

	return hv
}

// Show displays the help view
func (hv *HelpView) Show() {
	hv.isActive = true
	hv.app.tviewApp.SetFocus(hv.textView)
}

// Close hides the help view
func (hv *HelpView) Close() {
	hv.isActive = false
	hv.app.pages.HidePage(helpPage)
	hv.app.tviewApp.SetFocus(hv.app.trackTable)
}

// IsActive returns whether the help view is active
func (hv *HelpView) IsActive() bool {
	return hv.isActive
}

// GetContainer returns the help view container
func (hv *HelpView) GetContainer() *tview.Flex {
	return hv.container
}
