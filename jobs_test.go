package main

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pump drives a job to completion the way the UI loop would: execute the
// pending command, feed the message back to the manager, repeat.
func pump(t *testing.T, jm *jobManager, cmd tea.Cmd, hook func(jobMsg)) []jobMsg {
	t.Helper()
	var msgs []jobMsg
	for cmd != nil {
		msg, ok := cmd().(jobMsg)
		require.True(t, ok)
		msgs = append(msgs, msg)
		if hook != nil {
			hook(msg)
		}
		cmd = jm.Handle(msg)
	}
	return msgs
}

func TestJobManagerRunsFuncJob(t *testing.T) {
	jm := newJobManager()
	cmd := jm.Enqueue(jobRequest{
		title: "work",
		run: func(ctx context.Context, emit func(jobMsg)) (string, error) {
			emit(jobLogMsg{Title: "work", Line: "hello"})
			return "/tmp/out.png", nil
		},
	})

	msgs := pump(t, jm, cmd, nil)

	require.Len(t, msgs, 4)
	assert.IsType(t, jobStartedMsg{}, msgs[0])
	assert.Equal(t, jobLogMsg{Title: "work", Line: "hello"}, msgs[1])

	finished, ok := msgs[2].(jobFinishedMsg)
	require.True(t, ok)
	assert.Equal(t, "/tmp/out.png", finished.Result)
	assert.NoError(t, finished.Err)

	assert.IsType(t, jobChannelClosedMsg{}, msgs[3])
	assert.False(t, jm.Busy())
}

func TestJobManagerSerializesJobs(t *testing.T) {
	jm := newJobManager()
	var order []string
	mkJob := func(name string) jobRequest {
		return jobRequest{
			title: name,
			run: func(ctx context.Context, emit func(jobMsg)) (string, error) {
				order = append(order, name)
				return "", nil
			},
		}
	}

	cmd := jm.Enqueue(mkJob("first"))
	assert.Nil(t, jm.Enqueue(mkJob("second")), "second job must queue, not start")
	assert.True(t, jm.Busy())

	pump(t, jm, cmd, nil)

	assert.Equal(t, []string{"first", "second"}, order)
	assert.False(t, jm.Busy())
}

func TestJobManagerPropagatesError(t *testing.T) {
	jm := newJobManager()
	boom := errors.New("boom")
	cmd := jm.Enqueue(jobRequest{
		title: "work",
		run: func(ctx context.Context, emit func(jobMsg)) (string, error) {
			return "", boom
		},
	})

	msgs := pump(t, jm, cmd, nil)

	finished, ok := msgs[1].(jobFinishedMsg)
	require.True(t, ok)
	assert.ErrorIs(t, finished.Err, boom)
}

func TestJobManagerCancel(t *testing.T) {
	jm := newJobManager()
	cmd := jm.Enqueue(jobRequest{
		title: "work",
		run: func(ctx context.Context, emit func(jobMsg)) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	})

	msgs := pump(t, jm, cmd, func(msg jobMsg) {
		if _, ok := msg.(jobStartedMsg); ok {
			jm.Cancel()
		}
	})

	finished, ok := msgs[1].(jobFinishedMsg)
	require.True(t, ok)
	assert.ErrorIs(t, finished.Err, context.Canceled)
}
