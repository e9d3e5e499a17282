package main

import (
	"fmt"
	"strconv"
	"strings"

	"ai-quiz-runner/pkg/navigator"
)

type action int

const (
	actDispatch action = iota
	actUpload
	actHelp
	actQuit
	actShow
	actHistory
	actSessions
	actWrong
	actStats
)

const defaultCount = 10

var defaultTypes = []string{"single", "multi", "cloze", "qa"}

// command is one parsed REPL line. Dispatch commands carry the intents to feed
// the navigator in order; the rest are handled by the client itself.
type command struct {
	action  action
	intents []navigator.Intent
	arg     string
}

const helpText = `Commands:
  upload <file>                         upload a knowledge document (.md, .txt)
  generate [count] [types=a,b] [mode=m] [seed=n]
                                        start a session (types: single, multi, cloze, qa; mode: sequential, random)
  practice [count] [types=a,b] [mode=m] start a session from the wrong-question book
  pick <letter>...                      select (single) or toggle (multi) options
  clear                                 clear the current selection
  submit [text]                         submit the selection or the typed answer
  next | n                              move forward (fetches when at the newest question)
  back | b                              move back through answered questions
  skip | s                              skip the current question
  jump <n> | j <n>                      go to question n
  show                                  redraw the current question
  history [page]                        list recorded answers
  sessions                              list past sessions
  wrong [page]                          list the wrong-question book
  stats                                 wrong-question statistics
  restart                               finish the session, keep the uploaded knowledge
  reset                                 wipe the session, the knowledge lock and server data
  help                                  show this help
  quit                                  leave the client`

func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{action: actShow}, nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	dispatch := func(in ...navigator.Intent) (command, error) {
		return command{action: actDispatch, intents: in}, nil
	}

	switch name {
	case "help", "h", "?":
		return command{action: actHelp}, nil
	case "quit", "exit", "q":
		return command{action: actQuit}, nil
	case "show":
		return command{action: actShow}, nil
	case "stats":
		return command{action: actStats}, nil
	case "sessions":
		return command{action: actSessions}, nil
	case "history", "wrong":
		page := ""
		if len(args) > 0 {
			if _, err := strconv.Atoi(args[0]); err != nil {
				return command{}, fmt.Errorf("page must be a number, got %q", args[0])
			}
			page = args[0]
		}
		if name == "history" {
			return command{action: actHistory, arg: page}, nil
		}
		return command{action: actWrong, arg: page}, nil
	case "upload":
		if len(args) == 0 {
			return command{}, fmt.Errorf("usage: upload <file>")
		}
		return command{action: actUpload, arg: strings.Join(args, " ")}, nil
	case "generate", "gen", "practice":
		opts, err := parseGenerateOptions(args)
		if err != nil {
			return command{}, err
		}
		opts.Practice = name == "practice"
		if opts.Count == 0 {
			opts.Count = defaultCount
		}
		if len(opts.Types) == 0 && !opts.Practice {
			opts.Types = append([]string(nil), defaultTypes...)
		}
		return dispatch(navigator.IntentGenerate{Options: opts})
	case "pick", "p":
		if len(args) == 0 {
			return command{}, fmt.Errorf("usage: pick <letter>...")
		}
		var intents []navigator.Intent
		for _, a := range args {
			for _, letter := range strings.Split(strings.ToUpper(a), ",") {
				if letter == "" {
					continue
				}
				idx, ok := navigator.OptionIndex(letter, 26)
				if !ok {
					return command{}, fmt.Errorf("not an option letter: %q", letter)
				}
				intents = append(intents, navigator.IntentSelect{Option: idx})
			}
		}
		return dispatch(intents...)
	case "clear":
		return dispatch(navigator.IntentClear{})
	case "submit", "answer":
		return dispatch(navigator.IntentSubmit{Text: strings.Join(args, " ")})
	case "next", "n", "forward":
		return dispatch(navigator.IntentForward{})
	case "back", "b", "prev":
		return dispatch(navigator.IntentBack{})
	case "skip", "s":
		return dispatch(navigator.IntentSkip{})
	case "jump", "j":
		if len(args) != 1 {
			return command{}, fmt.Errorf("usage: jump <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return command{}, fmt.Errorf("question number must be a positive integer, got %q", args[0])
		}
		return dispatch(navigator.IntentJump{Target: n})
	case "restart":
		return dispatch(navigator.IntentRestart{})
	case "reset":
		return dispatch(navigator.IntentReset{})
	default:
		return command{}, fmt.Errorf("unknown command %q (type help)", name)
	}
}

func parseGenerateOptions(args []string) (navigator.GenerateOptions, error) {
	var opts navigator.GenerateOptions
	for _, a := range args {
		key, value, hasValue := strings.Cut(a, "=")
		if !hasValue {
			n, err := strconv.Atoi(a)
			if err != nil || n < 1 {
				return opts, fmt.Errorf("count must be a positive integer, got %q", a)
			}
			opts.Count = n
			continue
		}
		switch strings.ToLower(key) {
		case "count":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return opts, fmt.Errorf("count must be a positive integer, got %q", value)
			}
			opts.Count = n
		case "types", "type":
			for _, t := range strings.Split(value, ",") {
				if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
					opts.Types = append(opts.Types, t)
				}
			}
		case "mode":
			mode := strings.ToLower(value)
			if mode != "sequential" && mode != "random" {
				return opts, fmt.Errorf("mode must be sequential or random, got %q", value)
			}
			opts.Mode = mode
		case "seed":
			seed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return opts, fmt.Errorf("seed must be an integer, got %q", value)
			}
			opts.Seed = &seed
		default:
			return opts, fmt.Errorf("unknown option %q", key)
		}
	}
	return opts, nil
}
