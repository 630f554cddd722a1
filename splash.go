package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const splashDuration = 1200 * time.Millisecond

type splashDoneMsg struct{}

var splashArt = []string{
	`   _                    _    `,
	`  | |__   __ ___      _| | __`,
	`  | '_ \ / _' \ \ /\ / / |/ /`,
	`  | | | | (_| |\ V  V /|   < `,
	`  |_| |_|\__,_| \_/\_/ |_|\_\`,
	``,
	`  prompt · image · video`,
}

func splashCmd() tea.Cmd {
	return tea.Tick(splashDuration, func(time.Time) tea.Msg {
		return splashDoneMsg{}
	})
}

func (m *model) renderSplash() string {
	art := lipgloss.JoinVertical(lipgloss.Center, splashArt...)
	block := m.styles.splash.Render(art)
	if m.width == 0 || m.height == 0 {
		return block
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, block)
}
