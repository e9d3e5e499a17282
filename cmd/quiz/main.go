package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"ai-quiz-runner/internal/config"
	"ai-quiz-runner/internal/pkg/logger"
	"ai-quiz-runner/pkg/kvstore"
	"ai-quiz-runner/pkg/navigator"
	"ai-quiz-runner/pkg/quizapi"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()
	log := logger.NewIsolatedLogger(cfg.Client.LogFilePath)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := kvstore.Open(ctx, cfg.Client.StoreDriver, cfg.Client.StoreDSN)
	if err != nil {
		color.Red("Failed to open client store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	api := quizapi.New(cfg.Client.APIBaseURL, cfg.Client.RequestTimeout, log)
	nav := navigator.New(api, store, log)

	color.Cyan("Quiz runner · %s", cfg.Client.APIBaseURL)
	app := &repl{nav: nav, api: api, render: renderer{out: color.Output}, readFile: os.ReadFile}

	snap, err := nav.Dispatch(ctx, navigator.IntentResume{})
	if err != nil {
		app.render.err(err)
	}
	app.render.snapshot(snap)

	if err := app.run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
		color.Red("%v", err)
		os.Exit(1)
	}
}

type repl struct {
	nav      *navigator.Navigator
	api      *quizapi.Client
	render   renderer
	readFile func(string) ([]byte, error)
}

func (a *repl) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	for {
		fmt.Fprint(a.render.out, "> ")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			cmd, err := parseCommand(line)
			if err != nil {
				a.render.err(err)
				continue
			}
			if cmd.action == actQuit {
				return nil
			}
			a.execute(ctx, cmd)
		}
	}
}

func (a *repl) execute(ctx context.Context, cmd command) {
	switch cmd.action {
	case actHelp:
		fmt.Fprintln(a.render.out, helpText)
	case actShow:
		a.render.snapshot(a.nav.Snapshot())
	case actUpload:
		content, err := a.readFile(cmd.arg)
		if err != nil {
			a.render.err(err)
			return
		}
		a.dispatch(ctx, navigator.IntentUpload{Filename: filepath.Base(cmd.arg), Content: content})
	case actDispatch:
		a.dispatch(ctx, cmd.intents...)
	case actHistory:
		page, err := a.api.AnswerHistory(ctx, quizapi.HistoryQuery{Page: pageArg(cmd.arg)})
		if err != nil {
			a.render.err(err)
			return
		}
		a.render.history(page)
	case actSessions:
		list, err := a.api.HistorySessions(ctx, 0)
		if err != nil {
			a.render.err(err)
			return
		}
		a.render.sessions(list)
	case actWrong:
		page, err := a.api.WrongQuestions(ctx, quizapi.WrongQuery{Page: pageArg(cmd.arg)})
		if err != nil {
			a.render.err(err)
			return
		}
		a.render.wrongBook(page)
	case actStats:
		stats, err := a.api.WrongStats(ctx)
		if err != nil {
			a.render.err(err)
			return
		}
		a.render.stats(stats)
	}
}

// dispatch feeds intents in order and stops at the first rejection; the last
// frame is always drawn.
func (a *repl) dispatch(ctx context.Context, intents ...navigator.Intent) {
	var snap navigator.Snapshot
	for _, in := range intents {
		var err error
		snap, err = a.nav.Dispatch(ctx, in)
		if err != nil {
			a.render.err(err)
			break
		}
	}
	a.render.snapshot(snap)
}

func pageArg(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
