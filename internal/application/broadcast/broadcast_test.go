package broadcast

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campus-hub/campus-content-bot/internal/infrastructure/external/telegram"
	"github.com/campus-hub/campus-content-bot/pkg/logger"
)

type fakeSender struct {
	texts  []int64
	photos []int64
	videos []int64
	failOn map[int64]error
}

func (f *fakeSender) SendText(_ context.Context, chatID int64, _ string) (*telegram.Message, error) {
	if err := f.failOn[chatID]; err != nil {
		return nil, err
	}
	f.texts = append(f.texts, chatID)
	return &telegram.Message{}, nil
}

func (f *fakeSender) SendPhoto(_ context.Context, chatID int64, _, _ string) (*telegram.Message, error) {
	if err := f.failOn[chatID]; err != nil {
		return nil, err
	}
	f.photos = append(f.photos, chatID)
	return &telegram.Message{}, nil
}

func (f *fakeSender) SendVideo(_ context.Context, chatID int64, _, _ string) (*telegram.Message, error) {
	if err := f.failOn[chatID]; err != nil {
		return nil, err
	}
	f.videos = append(f.videos, chatID)
	return &telegram.Message{}, nil
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard})
}

func TestEngine_TextFanOut(t *testing.T) {
	sender := &fakeSender{}
	e := NewEngine(sender, 0, quietLogger())

	res := e.Send(context.Background(), []int64{1, 2, 3}, Content{Kind: KindText, Text: "hi"})

	assert.Equal(t, 3, res.Sent)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, []int64{1, 2, 3}, sender.texts)
}

func TestEngine_FaultIsolation(t *testing.T) {
	sender := &fakeSender{
		failOn: map[int64]error{
			2: &telegram.APIError{Code: 403, Description: "bot was blocked by the user"},
		},
	}
	e := NewEngine(sender, 0, quietLogger())

	res := e.Send(context.Background(), []int64{1, 2, 3}, Content{Kind: KindText, Text: "hi"})

	// The failed recipient does not stop the run.
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, []int64{1, 3}, sender.texts)
}

func TestEngine_MediaKinds(t *testing.T) {
	sender := &fakeSender{}
	e := NewEngine(sender, 0, quietLogger())

	e.Send(context.Background(), []int64{1}, Content{Kind: KindPhoto, FileID: "p", Caption: "c"})
	e.Send(context.Background(), []int64{1}, Content{Kind: KindVideo, FileID: "v"})

	assert.Equal(t, []int64{1}, sender.photos)
	assert.Equal(t, []int64{1}, sender.videos)
	assert.Empty(t, sender.texts)
}

func TestEngine_ContextCancelStopsRun(t *testing.T) {
	sender := &fakeSender{}
	e := NewEngine(sender, 50*time.Millisecond, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := e.Send(ctx, []int64{1, 2, 3}, Content{Kind: KindText, Text: "hi"})
	assert.Equal(t, 0, res.Sent+res.Failed)
}

func TestEngine_GenericErrorCounted(t *testing.T) {
	sender := &fakeSender{failOn: map[int64]error{1: errors.New("network down")}}
	e := NewEngine(sender, 0, quietLogger())

	res := e.Send(context.Background(), []int64{1}, Content{Kind: KindText, Text: "hi"})
	assert.Equal(t, 1, res.Failed)
}
