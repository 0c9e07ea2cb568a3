package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// SearchView is the filter line above the track table. The catalog is in
// memory, so the table is filtered as the user types.
type SearchView struct {
	app        *App
	inputField *tview.InputField
}

// NewSearchView creates a new search view
func NewSearchView(app *App) *SearchView {
	sv := &SearchView{app: app}

	sv.inputField = tview.NewInputField().
		SetLabel("[yellow]Search: ").
		SetFieldWidth(0).
		SetPlaceholder("/ to filter, ENTER to pick, ESC to clear").
		SetFieldBackgroundColor(tcell.ColorBlack)
	sv.inputField.SetBorder(false)

	sv.inputField.SetChangedFunc(func(text string) {
		sv.app.applySearch(text)
		if text == "" {
			sv.inputField.SetFieldBackgroundColor(tcell.ColorBlack)
		} else {
			sv.inputField.SetFieldBackgroundColor(tcell.ColorDarkGreen)
		}
	})

	sv.inputField.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter, tcell.KeyTab:
			sv.app.tviewApp.SetFocus(sv.app.trackTable)
		case tcell.KeyEscape:
			sv.Clear()
		}
	})

	sv.inputField.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// arrows leave the field for the table
		if event.Key() == tcell.KeyDown {
			sv.app.tviewApp.SetFocus(sv.app.trackTable)
			return nil
		}
		return event
	})

	return sv
}

// Show focuses the search field
func (sv *SearchView) Show() {
	sv.app.tviewApp.SetFocus(sv.inputField)
}

// Clear drops the filter and returns focus to the table
func (sv *SearchView) Clear() {
	sv.inputField.SetText("")
	sv.app.tviewApp.SetFocus(sv.app.trackTable)
}

// Query returns the current filter text
func (sv *SearchView) Query() string {
	return sv.inputField.GetText()
}

// HasFocus reports whether keystrokes go to the search field
func (sv *SearchView) HasFocus() bool {
	return sv.inputField.HasFocus()
}

// GetInput returns the search input field
func (sv *SearchView) GetInput() *tview.InputField {
	return sv.inputField
}
