package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"gluec/internal/pipeline"
	"gluec/internal/ui"
)

// runBuildWithUI runs the pipeline in a goroutine while the Bubble Tea
// program renders its progress events. The pipeline closes the event
// channel when it finishes, which quits the UI.
func runBuildWithUI(ctx context.Context, title string, req *pipeline.Request) (pipeline.Result, error) {
	if req == nil {
		return pipeline.Result{}, fmt.Errorf("missing build request")
	}
	events := make(chan pipeline.Event, 256)

	var result pipeline.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(events)
		reqCopy := *req
		reqCopy.Progress = pipeline.ChannelSink{Ch: events}
		res, err := pipeline.Run(gctx, &reqCopy)
		result = res
		return err
	})

	model := ui.NewProgressModel(title, req.Inputs, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	runErr := g.Wait()
	if uiErr != nil {
		return result, uiErr
	}
	return result, runErr
}
