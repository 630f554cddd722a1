package main

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hawk/internal/assets"
	"hawk/internal/config"
	"hawk/internal/enhance"
	"hawk/internal/imagegen"
	"hawk/internal/registry"
	"hawk/internal/video"
)

const (
	jobTitleGenerate = "generate"
	jobTitleAssemble = "assemble"
	jobTitleBrowse   = "open exports"

	sidebarWidth   = 28
	logsHeight     = 6
	maxLogLines    = 400
	statusDuration = 6 * time.Second
)

type keyMap struct {
	cursorUp    key.Binding
	cursorDown  key.Binding
	generate    key.Binding
	toggleSel   key.Binding
	selectAll   key.Binding
	clearSel    key.Binding
	assemble    key.Binding
	cycleAudio  key.Binding
	deleteSel   key.Binding
	browse      key.Binding
	copyPath    key.Binding
	cancelJob   key.Binding
	toggleHelp  key.Binding
	quit        key.Binding
	projectHint key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		cursorUp: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "cursor up"),
		),
		cursorDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "cursor down"),
		),
		generate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "generate"),
		),
		toggleSel: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "toggle select"),
		),
		selectAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select all"),
		),
		clearSel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear selection"),
		),
		assemble: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "assemble video"),
		),
		cycleAudio: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "audio track"),
		),
		deleteSel: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		browse: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "open exports"),
		),
		copyPath: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy path"),
		),
		cancelJob: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "cancel task"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		projectHint: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1..9", "switch project"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.projectHint,
		k.generate,
		k.toggleSel,
		k.assemble,
		k.toggleHelp,
		k.quit,
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.projectHint, k.cursorUp, k.cursorDown},
		{k.generate, k.toggleSel, k.selectAll, k.clearSel},
		{k.assemble, k.cycleAudio, k.deleteSel},
		{k.browse, k.copyPath, k.cancelJob},
		{k.toggleHelp, k.quit},
	}
}

type model struct {
	width  int
	height int

	styles styles
	keys   keyMap
	help   help.Model

	cfg       config.Config
	projects  []registry.Project
	current   registry.Project
	store     *assets.Store
	backend   imagegen.Backend
	enhancer  *enhance.Enhancer
	assembler *video.Assembler
	history   *historyStore
	telemetry *telemetryLogger

	splashActive bool

	gallery  []string
	cursor   int
	selected map[string]bool

	audioTracks []string
	audioIndex  int

	promptActive   bool
	promptInput    textinput.Model
	historyEntries []string
	historyIndex   int

	jobRunner     *jobManager
	jobActive     bool
	jobTitle      string
	spinner       spinner.Model
	progressBar   progress.Model
	progressStage string
	progressStep  int
	progressTotal int

	showHelp bool
	logs     viewport.Model
	logLines []string

	statusMsg     string
	statusIsError bool
	statusExpires time.Time
}

type appDeps struct {
	cfg       config.Config
	projects  []registry.Project
	store     *assets.Store
	backend   imagegen.Backend
	enhancer  *enhance.Enhancer
	assembler *video.Assembler
	history   *historyStore
	telemetry *telemetryLogger
	splash    bool
}

func initialModel(deps appDeps) *model {
	s := newStyles()
	m := &model{
		styles:       s,
		keys:         newKeyMap(),
		help:         help.New(),
		cfg:          deps.cfg,
		projects:     deps.projects,
		store:        deps.store,
		backend:      deps.backend,
		enhancer:     deps.enhancer,
		assembler:    deps.assembler,
		history:      deps.history,
		telemetry:    deps.telemetry,
		splashActive: deps.splash,
		selected:     make(map[string]bool),
		audioIndex:   -1,
		logLines: []string{
			"[info] press 1..9 to pick a project, g to generate, ? for all keys",
		},
	}

	m.help.ShortSeparator = " │ "
	m.help.Styles.ShortKey = s.statusHint.Copy()
	m.help.Styles.ShortDesc = s.statusHint.Copy()
	m.help.Styles.ShortSeparator = s.statusSeg.Copy()
	m.help.Styles.FullKey = s.statusHint.Copy()
	m.help.Styles.FullDesc = s.statusHint.Copy()
	m.help.Styles.FullSeparator = s.statusSeg.Copy()

	m.promptInput = textinput.New()
	m.promptInput.Prompt = "> "
	m.promptInput.Placeholder = "describe the image"
	m.promptInput.CharLimit = 500

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.spinner.Style = s.statusHint.Copy().Bold(true)
	m.progressBar = progress.New(progress.WithDefaultGradient())

	m.logs = viewport.New(80, logsHeight)
	m.jobRunner = newJobManager()

	if len(m.projects) > 0 {
		m.switchProject(m.projects[0])
	}
	return m
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.splashActive {
		cmds = append(cmds, splashCmd())
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch message := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.logs.Width = max(message.Width-2, 20)
		m.logs.Height = logsHeight
		m.progressBar.Width = min(48, max(message.Width-12, 10))
		setMarkdownWordWrap(min(72, message.Width-8))
		m.refreshLogs()
		return m, nil

	case splashDoneMsg:
		m.splashActive = false
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(message)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}

	case jobMsg:
		if cmd := m.handleJobMessage(message); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		if m.splashActive {
			m.splashActive = false
			return m, nil
		}
		if m.promptActive {
			return m.updatePrompt(message)
		}
		if m.showHelp {
			switch message.String() {
			case "?", "esc", "q":
				m.showHelp = false
			}
			return m, nil
		}
		if cmd := m.handleKey(message); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if n := projectIndexForKey(msg.String()); n >= 0 && n < len(m.projects) {
		m.switchProject(m.projects[n])
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit

	case key.Matches(msg, m.keys.toggleHelp):
		m.showHelp = true

	case key.Matches(msg, m.keys.cursorUp):
		m.cursor = clampCursor(m.cursor-1, len(m.gallery))

	case key.Matches(msg, m.keys.cursorDown):
		m.cursor = clampCursor(m.cursor+1, len(m.gallery))

	case key.Matches(msg, m.keys.generate):
		return m.openPrompt()

	case key.Matches(msg, m.keys.toggleSel):
		if path, ok := m.cursorPath(); ok {
			if m.selected[path] {
				delete(m.selected, path)
			} else {
				m.selected[path] = true
			}
		}

	case key.Matches(msg, m.keys.selectAll):
		for _, path := range m.gallery {
			m.selected[path] = true
		}

	case key.Matches(msg, m.keys.clearSel):
		m.selected = make(map[string]bool)

	case key.Matches(msg, m.keys.assemble):
		return m.startAssemble()

	case key.Matches(msg, m.keys.cycleAudio):
		m.audioIndex = nextAudioIndex(m.audioIndex, len(m.audioTracks))
		m.setStatus(m.audioLabel(), false)

	case key.Matches(msg, m.keys.deleteSel):
		m.deleteImages()

	case key.Matches(msg, m.keys.browse):
		return m.openExports()

	case key.Matches(msg, m.keys.copyPath):
		if path, ok := m.cursorPath(); ok {
			if err := clipboard.WriteAll(path); err != nil {
				m.setStatus("clipboard unavailable: "+err.Error(), true)
			} else {
				m.setStatus("copied "+filepath.Base(path), false)
			}
		}

	case key.Matches(msg, m.keys.cancelJob):
		if m.jobActive {
			m.jobRunner.Cancel()
			m.appendLog("[job] cancel requested")
		}
	}
	return nil
}

// projectIndexForKey maps "1".."9" to a registry index.
func projectIndexForKey(s string) int {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return -1
	}
	return int(s[0] - '1')
}

func (m *model) switchProject(project registry.Project) {
	m.current = project
	m.selected = make(map[string]bool)
	m.refreshGallery()
	m.audioTracks = m.store.Audio(project.Slug)
	// First track by default when the project has audio; `o` cycles it off.
	m.audioIndex = -1
	if len(m.audioTracks) > 0 {
		m.audioIndex = 0
	}
	m.setStatus("project: "+project.Name, false)
}

func (m *model) refreshGallery() {
	m.gallery = m.store.Images(m.current.Slug)
	m.cursor = clampCursor(m.cursor, len(m.gallery))
	for path := range m.selected {
		if !containsPath(m.gallery, path) {
			delete(m.selected, path)
		}
	}
}

func (m *model) cursorPath() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.gallery) {
		return "", false
	}
	return m.gallery[m.cursor], true
}

func clampCursor(cursor, n int) int {
	if n == 0 {
		return 0
	}
	if cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

// nextAudioIndex cycles -1 (no audio) through each available track.
func nextAudioIndex(current, n int) int {
	if n == 0 {
		return -1
	}
	current++
	if current >= n {
		return -1
	}
	return current
}

func containsPath(paths []string, path string) bool {
	for _, p := range paths {
		if p == path {
			return true
		}
	}
	return false
}

// audioForIndex resolves the track the assembler will mux; -1 means none.
func audioForIndex(index int, tracks []string) string {
	if index < 0 || index >= len(tracks) {
		return ""
	}
	return tracks[index]
}

func (m *model) audioLabel() string {
	track := audioForIndex(m.audioIndex, m.audioTracks)
	if track == "" {
		return "audio: none"
	}
	return "audio: " + filepath.Base(track)
}

func (m *model) selectedOrdered() []string {
	var paths []string
	for _, path := range m.gallery {
		if m.selected[path] {
			paths = append(paths, path)
		}
	}
	return paths
}

func (m *model) setStatus(msg string, isError bool) {
	m.statusMsg = msg
	m.statusIsError = isError
	m.statusExpires = time.Now().Add(statusDuration)
}

func (m *model) appendLog(line string) {
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
	m.refreshLogs()
}

func (m *model) refreshLogs() {
	m.logs.SetContent(strings.Join(m.logLines, "\n"))
	m.logs.GotoBottom()
}

// --- prompt overlay ---

func (m *model) openPrompt() tea.Cmd {
	if m.jobActive {
		m.setStatus("a task is already running", true)
		return nil
	}
	m.promptActive = true
	m.promptInput.SetValue("")
	m.promptInput.Focus()
	m.historyIndex = -1
	m.historyEntries = nil
	if entries, err := m.history.Recent(m.current.Slug, historyKeepPerProject); err == nil {
		m.historyEntries = entries
	}
	return textinput.Blink
}

func (m *model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.promptActive = false
		m.promptInput.Blur()
		return m, nil
	case "enter":
		prompt := strings.TrimSpace(m.promptInput.Value())
		m.promptActive = false
		m.promptInput.Blur()
		if prompt == "" {
			return m, nil
		}
		return m, m.startGenerate(prompt)
	case "up":
		if m.historyIndex+1 < len(m.historyEntries) {
			m.historyIndex++
			m.promptInput.SetValue(m.historyEntries[m.historyIndex])
			m.promptInput.CursorEnd()
		}
		return m, nil
	case "down":
		if m.historyIndex > 0 {
			m.historyIndex--
			m.promptInput.SetValue(m.historyEntries[m.historyIndex])
		} else if m.historyIndex == 0 {
			m.historyIndex = -1
			m.promptInput.SetValue("")
		}
		m.promptInput.CursorEnd()
		return m, nil
	}
	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(msg)
	return m, cmd
}

// --- background tasks ---

func (m *model) startGenerate(prompt string) tea.Cmd {
	if err := m.history.Add(m.current.Slug, prompt); err != nil {
		m.appendLog("[warn] history not recorded: " + err.Error())
	}

	project := m.current
	backend := m.backend
	enhancer := m.enhancer

	return m.jobRunner.Enqueue(jobRequest{
		title: jobTitleGenerate,
		run: func(ctx context.Context, emit func(jobMsg)) (string, error) {
			final := prompt
			if enhancer != nil {
				improved, err := enhancer.Enhance(ctx, prompt, project.Description)
				if err != nil {
					emit(jobLogMsg{Title: jobTitleGenerate, Line: "[warn] enhancer unavailable, using prompt as written"})
				} else if improved != prompt {
					emit(jobLogMsg{Title: jobTitleGenerate, Line: "[enhance] " + improved})
				}
				final = improved
			}

			events := make(chan imagegen.Progress, 16)
			forwarded := make(chan struct{})
			go func() {
				for p := range events {
					emit(jobProgressMsg{Title: jobTitleGenerate, Progress: p})
				}
				close(forwarded)
			}()
			path, err := backend.Generate(ctx, project, final, events)
			close(events)
			<-forwarded
			return path, err
		},
	})
}

func (m *model) startAssemble() tea.Cmd {
	images := m.selectedOrdered()
	if len(images) == 0 {
		m.setStatus("select at least one image first (s)", true)
		return nil
	}
	if m.jobActive {
		m.setStatus("a task is already running", true)
		return nil
	}

	audio := audioForIndex(m.audioIndex, m.audioTracks)

	output := filepath.Join(m.store.ExportsDir(m.current.Slug), exportFilename(time.Now()))
	assembler := m.assembler

	return m.jobRunner.Enqueue(jobRequest{
		title: jobTitleAssemble,
		run: func(ctx context.Context, emit func(jobMsg)) (string, error) {
			return assembler.Assemble(ctx, images, audio, output, func(line string) {
				emit(jobLogMsg{Title: jobTitleAssemble, Line: line})
			})
		},
	})
}

func exportFilename(now time.Time) string {
	return now.Format("20060102_150405") + "_reel.mp4"
}

func (m *model) deleteImages() {
	paths := m.selectedOrdered()
	if len(paths) == 0 {
		if path, ok := m.cursorPath(); ok {
			paths = []string{path}
		}
	}
	if len(paths) == 0 {
		return
	}
	var failed int
	for _, path := range paths {
		if err := m.store.Delete(path); err != nil {
			failed++
			m.appendLog("[warn] delete failed: " + err.Error())
			continue
		}
		m.telemetry.Emit("delete", m.current.Slug, map[string]string{"file": filepath.Base(path)})
	}
	m.selected = make(map[string]bool)
	m.refreshGallery()
	if failed > 0 {
		m.setStatus(fmt.Sprintf("deleted %d, %d failed", len(paths)-failed, failed), true)
	} else {
		m.setStatus(fmt.Sprintf("deleted %d image(s)", len(paths)), false)
	}
}

func (m *model) openExports() tea.Cmd {
	dir := m.store.ExportsDir(m.current.Slug)
	if err := m.store.EnsureDirs(m.current.Slug); err != nil {
		m.setStatus("exports dir unavailable: "+err.Error(), true)
		return nil
	}
	command, args := openCommand(dir)
	return m.jobRunner.Enqueue(jobRequest{
		title:   jobTitleBrowse,
		command: command,
		args:    args,
	})
}

func openCommand(path string) (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "explorer", []string{path}
	default:
		return "xdg-open", []string{path}
	}
}

// --- job events ---

func (m *model) handleJobMessage(msg jobMsg) tea.Cmd {
	switch message := msg.(type) {
	case jobStartedMsg:
		m.jobActive = true
		m.jobTitle = message.Title
		m.progressStage = ""
		m.progressStep = 0
		m.progressTotal = 0
		m.appendLog(fmt.Sprintf("[job] %s started", message.Title))
		switch message.Title {
		case jobTitleGenerate:
			m.telemetry.Emit("generate_start", m.current.Slug, nil)
		case jobTitleAssemble:
			m.telemetry.Emit("assemble_start", m.current.Slug, nil)
		}

	case jobLogMsg:
		m.appendLog(message.Line)

	case jobProgressMsg:
		m.progressStage = message.Progress.Stage
		m.progressStep = message.Progress.Step
		m.progressTotal = message.Progress.Total

	case jobFinishedMsg:
		m.jobActive = false
		m.finishJob(message)

	case jobChannelClosedMsg:
		m.jobActive = false
	}

	return m.jobRunner.Handle(msg)
}

func (m *model) finishJob(msg jobFinishedMsg) {
	fields := map[string]string{"status": "ok"}
	if msg.Err != nil {
		fields["status"] = "error"
		fields["error"] = msg.Err.Error()
	}

	switch msg.Title {
	case jobTitleGenerate:
		m.telemetry.Emit("generate_finish", m.current.Slug, fields)
		if msg.Err != nil {
			m.appendLog("[job] generate failed: " + msg.Err.Error())
			m.setStatus(msg.Err.Error(), true)
			return
		}
		m.refreshGallery()
		m.cursor = 0
		m.appendLog("[job] saved " + filepath.Base(msg.Result))
		m.setStatus("saved "+filepath.Base(msg.Result), false)

	case jobTitleAssemble:
		m.telemetry.Emit("assemble_finish", m.current.Slug, fields)
		if msg.Err != nil {
			m.appendLog("[job] assemble failed: " + msg.Err.Error())
			m.setStatus(msg.Err.Error(), true)
			return
		}
		m.appendLog("[job] exported " + filepath.Base(msg.Result))
		m.setStatus("exported "+filepath.Base(msg.Result), false)

	default:
		if msg.Err != nil {
			m.setStatus(msg.Err.Error(), true)
		}
	}
}

// --- view ---

func (m *model) View() string {
	if m.splashActive {
		return m.renderSplash()
	}

	var builder strings.Builder

	title := "hawk • " + m.current.Name + " • backend: " + m.backend.Name()
	builder.WriteString(m.styles.topBar.Width(m.width).Render(title))
	builder.WriteRune('\n')

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), m.renderGallery())
	builder.WriteString(body)
	builder.WriteRune('\n')

	logTitle := m.styles.columnTitle.Render("Activity")
	builder.WriteString(m.styles.panel.Width(max(m.width-2, 20)).Render(logTitle + "\n" + m.logs.View()))
	builder.WriteRune('\n')

	helpWidth := m.width - 4
	if helpWidth < 0 {
		helpWidth = 0
	}
	m.help.Width = helpWidth
	if helpView := m.help.View(m.keys); helpView != "" {
		builder.WriteString(helpView)
		if !strings.HasSuffix(helpView, "\n") {
			builder.WriteRune('\n')
		}
	}

	builder.WriteString(m.renderStatus())

	if m.promptActive {
		builder.WriteString("\n")
		builder.WriteString(m.renderPromptOverlay())
	} else if m.jobActive {
		builder.WriteString("\n")
		builder.WriteString(m.renderProgressOverlay())
	} else if m.showHelp {
		builder.WriteString("\n")
		builder.WriteString(m.renderHelpOverlay())
	}

	return m.styles.app.Render(builder.String())
}

func (m *model) renderSidebar() string {
	var rows []string
	rows = append(rows, m.styles.sidebarTitle.Render("Projects"))
	for i, project := range m.projects {
		label := fmt.Sprintf("%d %s", i+1, project.Name)
		if project.Slug == m.current.Slug {
			rows = append(rows, m.styles.listSel.Render(label))
		} else {
			rows = append(rows, m.styles.listItem.Render(label))
		}
	}
	rows = append(rows, "")
	rows = append(rows, m.styles.statusHint.Render(" "+m.audioLabel()))
	content := strings.Join(rows, "\n")
	return m.styles.sidebar.Width(sidebarWidth).Render(content)
}

func (m *model) renderGallery() string {
	width := m.width - sidebarWidth - 4
	if width < 24 {
		width = 24
	}

	var rows []string
	rows = append(rows, m.styles.columnTitle.Render(
		fmt.Sprintf("Gallery — %d image(s), %d selected", len(m.gallery), len(m.selected))))

	if len(m.gallery) == 0 {
		rows = append(rows, m.styles.statusHint.Render(" no images yet — press g to generate"))
	}

	for i, path := range m.gallery {
		marker := "[ ]"
		if m.selected[path] {
			marker = "[x]"
		}
		line := marker + " " + filepath.Base(path)
		switch {
		case i == m.cursor:
			line = m.styles.galleryCursor.Render(line)
		case m.selected[path]:
			line = m.styles.gallerySelected.Render(line)
		default:
			line = m.styles.listItem.Render(line)
		}
		rows = append(rows, line)
	}

	content := strings.Join(rows, "\n")
	return m.styles.panelFocused.Width(width).Render(content)
}

func (m *model) renderStatus() string {
	segments := []string{
		m.styles.statusSeg.Render(m.current.Slug),
		m.styles.statusSeg.Render(fmt.Sprintf("%d selected", len(m.selected))),
	}
	if m.jobActive {
		segments = append(segments, m.styles.statusSeg.Render(m.spinner.View()+" "+m.jobTitle))
	}
	if m.statusMsg != "" && time.Now().Before(m.statusExpires) {
		style := m.styles.statusOK
		if m.statusIsError {
			style = m.styles.statusError
		}
		segments = append(segments, style.Render(m.statusMsg))
	}
	return m.styles.statusBar.Width(m.width).Render(strings.Join(segments, ""))
}

func (m *model) overlayWidth() int {
	width := min(64, m.width-4)
	if width < 24 {
		width = 24
	}
	return width
}

func (m *model) renderPromptOverlay() string {
	width := m.overlayWidth()
	m.promptInput.Width = width - 8

	var content strings.Builder
	content.WriteString(m.styles.overlayPrompt.Render("Prompt for " + m.current.Name))
	content.WriteRune('\n')
	content.WriteString(m.promptInput.View())
	content.WriteRune('\n')
	content.WriteString(m.styles.hint.Render("enter submit • up recall previous • esc cancel"))

	overlay := m.styles.overlay.Width(width).Render(content.String())
	return lipgloss.Place(m.width, m.height/2, lipgloss.Center, lipgloss.Center, overlay)
}

func (m *model) renderProgressOverlay() string {
	width := m.overlayWidth()

	var content strings.Builder
	content.WriteString(m.styles.overlayPrompt.Render(m.spinner.View() + " " + m.jobTitle))
	content.WriteRune('\n')
	if m.progressStage != "" {
		content.WriteString(m.styles.statusHint.Render(m.progressStage))
		content.WriteRune('\n')
	}
	if m.progressTotal > 0 {
		pct := float64(m.progressStep) / float64(m.progressTotal)
		content.WriteString(m.progressBar.ViewAs(pct))
		content.WriteRune('\n')
	}
	content.WriteString(m.styles.hint.Render("ctrl+k cancel"))

	overlay := m.styles.overlay.Width(width).Render(content.String())
	return lipgloss.Place(m.width, m.height/2, lipgloss.Center, lipgloss.Center, overlay)
}

func (m *model) renderHelpOverlay() string {
	width := min(80, m.width-4)
	if width < 40 {
		width = 40
	}
	overlay := m.styles.overlay.Width(width).Render(renderHelpDoc())
	return lipgloss.Place(m.width, m.height/2, lipgloss.Center, lipgloss.Center, overlay)
}
