package main

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent = lipgloss.Color("#c9a227")
	colorDim    = lipgloss.Color("#6b7089")
	colorError  = lipgloss.Color("#e06c75")
	colorOK     = lipgloss.Color("#98c379")
	colorText   = lipgloss.Color("#d8dee9")
)

type styles struct {
	app, topBar                      lipgloss.Style
	sidebar, sidebarTitle            lipgloss.Style
	panel, panelFocused              lipgloss.Style
	columnTitle                      lipgloss.Style
	listItem, listSel                lipgloss.Style
	gallerySelected, galleryCursor   lipgloss.Style
	statusBar, statusSeg, statusHint lipgloss.Style
	statusError, statusOK            lipgloss.Style
	overlay, overlayPrompt, hint     lipgloss.Style
	splash                           lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle().Foreground(colorText)
	panelBorder := lipgloss.NormalBorder()
	focusedBorder := lipgloss.DoubleBorder()

	return styles{
		app:             base,
		topBar:          base.Copy().Bold(true).Foreground(colorAccent).Padding(0, 1),
		sidebar:         base.Copy().BorderStyle(panelBorder).BorderForeground(colorDim),
		sidebarTitle:    base.Copy().Bold(true).Padding(0, 1),
		panel:           base.Copy().BorderStyle(panelBorder).BorderForeground(colorDim),
		panelFocused:    base.Copy().BorderStyle(focusedBorder).BorderForeground(colorAccent),
		columnTitle:     base.Copy().Bold(true).Padding(0, 1),
		listItem:        base.Copy().Padding(0, 1),
		listSel:         base.Copy().Padding(0, 1).Bold(true).Foreground(colorAccent),
		gallerySelected: base.Copy().Foreground(colorAccent),
		galleryCursor:   base.Copy().Bold(true).Reverse(true),
		statusBar:       base.Copy().Padding(0, 1),
		statusSeg:       base.Copy().Padding(0, 1).MarginRight(1).Foreground(colorDim),
		statusHint:      base.Copy().Foreground(colorDim),
		statusError:     base.Copy().Bold(true).Foreground(colorError),
		statusOK:        base.Copy().Foreground(colorOK),
		overlay:         base.Copy().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(1, 2),
		overlayPrompt:   base.Copy().Bold(true),
		hint:            base.Copy().Faint(true),
		splash:          base.Copy().Bold(true).Foreground(colorAccent),
	}
}
