package main

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/creack/pty"

	"hawk/internal/imagegen"
)

type jobMsg interface {
	isJob()
}

type jobStartedMsg struct {
	Title string
}

func (jobStartedMsg) isJob() {}

type jobLogMsg struct {
	Title string
	Line  string
}

func (jobLogMsg) isJob() {}

type jobProgressMsg struct {
	Title    string
	Progress imagegen.Progress
}

func (jobProgressMsg) isJob() {}

type jobFinishedMsg struct {
	Title  string
	Result string
	Err    error
}

func (jobFinishedMsg) isJob() {}

type jobChannelClosedMsg struct{}

func (jobChannelClosedMsg) isJob() {}

// jobFunc runs in a background goroutine. It reports lines and progress
// through emit and returns a result path.
type jobFunc func(ctx context.Context, emit func(jobMsg)) (string, error)

type jobRequest struct {
	title string

	// Exactly one of run or command is set: run executes in-process,
	// command spawns a subprocess under a pty.
	run     jobFunc
	command string
	args    []string
}

// jobManager serializes background work: one task runs at a time, later
// requests queue behind it. All task output reaches the UI as jobMsg values.
type jobManager struct {
	queue   []jobRequest
	current *jobRequest
	running bool
	cancel  context.CancelFunc
	events  chan jobMsg
}

func newJobManager() *jobManager {
	return &jobManager{}
}

func (jm *jobManager) Busy() bool { return jm.running }

func (jm *jobManager) CurrentTitle() string {
	if jm.current == nil {
		return ""
	}
	return jm.current.title
}

func (jm *jobManager) Enqueue(req jobRequest) tea.Cmd {
	jm.queue = append(jm.queue, req)
	return jm.nextCmd()
}

// Cancel stops the running task; queued tasks still run afterwards.
func (jm *jobManager) Cancel() {
	if jm.cancel != nil {
		jm.cancel()
	}
}

// Handle re-arms the channel read after every message; the task is retired
// once its channel closes.
func (jm *jobManager) Handle(msg jobMsg) tea.Cmd {
	if _, closed := msg.(jobChannelClosedMsg); closed {
		jm.running = false
		jm.current = nil
		jm.cancel = nil
		jm.events = nil
		return jm.nextCmd()
	}
	if jm.events == nil {
		return nil
	}
	return waitForJobMsg(jm.events)
}

func (jm *jobManager) nextCmd() tea.Cmd {
	if jm.running || len(jm.queue) == 0 {
		return nil
	}
	req := jm.queue[0]
	jm.queue = jm.queue[1:]
	jm.current = &req
	jm.running = true

	ctx, cancel := context.WithCancel(context.Background())
	jm.cancel = cancel

	ch := make(chan jobMsg)
	jm.events = ch
	go runJob(ctx, req, ch)
	return waitForJobMsg(ch)
}

func runJob(ctx context.Context, req jobRequest, ch chan<- jobMsg) {
	defer close(ch)

	ch <- jobStartedMsg{Title: req.title}

	if req.run != nil {
		result, err := req.run(ctx, func(msg jobMsg) { ch <- msg })
		ch <- jobFinishedMsg{Title: req.title, Result: result, Err: err}
		return
	}

	cmd := exec.CommandContext(ctx, req.command, req.args...)
	cmd.Env = os.Environ()

	ptmx, err := pty.Start(cmd)
	if err != nil {
		ch <- jobLogMsg{Title: req.title, Line: err.Error()}
		ch <- jobFinishedMsg{Title: req.title, Err: err}
		return
	}
	defer ptmx.Close()

	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(ptmx)
		for scanner.Scan() {
			ch <- jobLogMsg{Title: req.title, Line: scanner.Text()}
		}
	}()

	wg.Wait()
	err = cmd.Wait()
	ch <- jobFinishedMsg{Title: req.title, Err: err}
}

func waitForJobMsg(ch <-chan jobMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return jobChannelClosedMsg{}
		}
		return msg
	}
}
