package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	mainPage   = "main"
	helpPage   = "help"
	noticePage = "notice"
)

// createHomepage sets up the UI layout
func (a *App) createHomepage() {
	a.sessionView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false).
		SetWrap(true)
	a.sessionView.SetBorder(true).SetTitle(" Session ")

	a.controlBar = tview.NewTextView().
		SetDynamicColors(true)
	a.controlBar.SetBorder(false)

	a.trackTable = tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0)
	a.trackTable.SetBorder(false)

	// Initialize views
	a.searchView = NewSearchView(a)
	a.helpView = NewHelpView(a)
	a.notice = tview.NewModal().
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) { a.closeNotice() })

	a.setupInputHandlers()
	a.setupKeyBindings()

	rightPanel := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.searchView.GetInput(), 1, 0, false).
		AddItem(a.trackTable, 0, 1, true)
	rightPanel.SetBorder(true).SetTitle(" Choose a meditation ")

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.sessionView, 0, 1, false).
		AddItem(rightPanel, 0, 1, true)

	a.rootFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainLayout, 0, 1, true).
		AddItem(a.controlBar, 1, 0, false)

	a.pages = tview.NewPages().
		AddPage(mainPage, a.rootFlex, true, true).
		AddPage(helpPage, centered(a.helpView.GetContainer(), 60, 18), true, false).
		AddPage(noticePage, a.notice, false, false)

	a.renderTrackTable()
	a.renderSession()
	a.tviewApp.SetRoot(a.pages, true).SetFocus(a.trackTable)
}

func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			SetDirection(tview.FlexColumn).
			AddItem(nil, 0, 1, false).
			AddItem(p, width, 0, true).
			AddItem(nil, 0, 1, false), height, 0, true).
		AddItem(nil, 0, 1, false)
}

// setupTableHeaders sets up the table header row
func (a *App) setupTableHeaders() {
	headerStyle := tcell.StyleDefault.Foreground(tcell.ColorGray).Attributes(tcell.AttrBold)

	a.trackTable.SetCell(0, 0, tview.NewTableCell("").SetStyle(headerStyle).SetSelectable(false))
	a.trackTable.SetCell(0, 1, tview.NewTableCell("Track").SetStyle(headerStyle).SetSelectable(false))
	a.trackTable.SetCell(0, 2, tview.NewTableCell("Length").SetStyle(headerStyle).SetSelectable(false).
		SetAlign(tview.AlignRight))
}

// setupInputHandlers sets up keyboard input handlers
func (a *App) setupInputHandlers() {
	a.trackTable.SetSelectedFunc(func(row, column int) {
		if row > 0 && row-1 < len(a.visible) {
			a.selectTrack(a.visible[row-1])
		}
	})

	a.tviewApp.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Handle modal views first
		if front, _ := a.pages.GetFrontPage(); front == noticePage {
			if event.Key() == tcell.KeyEscape {
				a.closeNotice()
				return nil
			}
			return event
		}
		if a.helpView.IsActive() {
			if event.Key() == tcell.KeyEscape || event.Rune() == '?' {
				a.helpView.Close()
				return nil
			}
			return event
		}
		if a.searchView.HasFocus() {
			return event
		}

		if a.keys.HandleKey(event) {
			return nil
		}
		return event
	})
}

func (a *App) setupKeyBindings() {
	a.keys = NewKeyBindingManager()

	a.keys.RegisterKeyBinding(KeyAction{name: "toggle", handler: a.toggle}, nil, []rune{' '})
	a.keys.RegisterKeyBinding(KeyAction{name: "reset", handler: a.reset}, nil, []rune{'r', 'R'})
	a.keys.RegisterKeyBinding(KeyAction{name: "down", handler: func() { a.moveSelection(1) }}, nil, []rune{'j'})
	a.keys.RegisterKeyBinding(KeyAction{name: "up", handler: func() { a.moveSelection(-1) }}, nil, []rune{'k'})
	a.keys.RegisterKeyBinding(KeyAction{name: "goEnd", handler: a.goLast}, nil, []rune{'G'})
	a.keys.RegisterSequence(KeyAction{name: "goStart", handler: a.goFirst}, "gg")
	a.keys.RegisterKeyBinding(KeyAction{name: "search", handler: a.searchView.Show}, nil, []rune{'/'})
	a.keys.RegisterKeyBinding(KeyAction{name: "help", handler: a.showHelp}, nil, []rune{'?'})
	a.keys.RegisterKeyBinding(KeyAction{name: "escape", handler: a.handleEscape}, []tcell.Key{tcell.KeyEscape}, nil)
	a.keys.RegisterKeyBinding(KeyAction{name: "quit", handler: a.handleExit}, []tcell.Key{tcell.KeyCtrlC}, nil)
}

// handleEscape clears an active filter first, then quits
func (a *App) handleEscape() {
	if a.searchView.Query() != "" {
		a.searchView.Clear()
		return
	}
	a.handleExit()
}

// renderTrackTable renders the visible tracks, marking the selected one
func (a *App) renderTrackTable() {
	row, _ := a.trackTable.GetSelection()
	a.trackTable.Clear()
	a.setupTableHeaders()

	if len(a.visible) == 0 {
		a.trackTable.SetCell(1, 1, tview.NewTableCell("No tracks match").
			SetTextColor(tcell.ColorGray).
			SetSelectable(false))
		return
	}

	selected := trackID(a.snap.Track)
	for i, t := range a.visible {
		marker, color := "○", tcell.ColorGray
		if t.ID == selected {
			marker, color = "●", tcell.ColorLightGreen
		}
		rowStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDefault)

		a.trackTable.SetCell(i+1, 0, tview.NewTableCell(marker).
			SetStyle(rowStyle.Foreground(color)))
		a.trackTable.SetCell(i+1, 1, tview.NewTableCell(tview.Escape(Truncate(t.DisplayName(), a.cfg.UI.TableNameWidth))).
			SetStyle(rowStyle).
			SetExpansion(1))
		a.trackTable.SetCell(i+1, 2, tview.NewTableCell(FormatMinutes(t)).
			SetStyle(rowStyle.Foreground(tcell.ColorGray)).
			SetAlign(tview.AlignRight))
	}

	a.trackTable.SetSelectedStyle(tcell.StyleDefault.
		Background(tcell.ColorDarkGreen).
		Foreground(tcell.ColorWhite))
	a.trackTable.Select(clamp(row, 1, len(a.visible)), 0)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (a *App) moveSelection(delta int) {
	if len(a.visible) == 0 {
		return
	}
	row, _ := a.trackTable.GetSelection()
	a.trackTable.Select(clamp(row+delta, 1, len(a.visible)), 0)
}

func (a *App) goFirst() {
	if len(a.visible) > 0 {
		a.trackTable.Select(1, 0)
	}
}

func (a *App) goLast() {
	if len(a.visible) > 0 {
		a.trackTable.Select(len(a.visible), 0)
	}
}

// applySearch filters the table by query
func (a *App) applySearch(query string) {
	a.visible = a.catalog.Search(query)
	a.renderTrackTable()
}

func (a *App) showHelp() {
	a.pages.ShowPage(helpPage)
	a.helpView.Show()
}

func (a *App) showNotice(text string) {
	if text == "" {
		return
	}
	a.notice.SetText(text)
	a.pages.ShowPage(noticePage)
	a.tviewApp.SetFocus(a.notice)
}

func (a *App) closeNotice() {
	a.pages.HidePage(noticePage)
	a.tviewApp.SetFocus(a.trackTable)
}
