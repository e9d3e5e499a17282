package main

import (
	"fmt"
	"io"
	"strings"

	"ai-quiz-runner/pkg/navigator"
	"ai-quiz-runner/pkg/quizapi"

	"github.com/fatih/color"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	infoColor    = color.New(color.FgYellow)
	goodColor    = color.New(color.FgGreen)
	badColor     = color.New(color.FgRed)
	mutedColor   = color.New(color.FgHiBlack)
	selectedMark = color.New(color.FgBlue, color.Bold)
)

var typeLabels = map[navigator.QuestionType]string{
	navigator.SingleChoice: "single choice",
	navigator.MultiChoice:  "multiple choice",
	navigator.Cloze:        "fill in the blank",
	navigator.QA:           "short answer",
}

type renderer struct {
	out io.Writer
}

func (r renderer) snapshot(s navigator.Snapshot) {
	w := r.out
	if s.Knowledge != nil {
		mutedColor.Fprintf(w, "knowledge: %s (%d entries)\n", s.Knowledge.Filename, s.Knowledge.EntryCount)
	}

	switch s.State {
	case navigator.NoSession:
		if s.Knowledge == nil {
			infoColor.Fprintln(w, "No knowledge uploaded. Use: upload <file>")
		} else {
			infoColor.Fprintln(w, "No active session. Use: generate [count] [types=...] [mode=...]")
		}
		return
	case navigator.Finished:
		r.summary(s.Session)
		if s.Current == nil {
			return
		}
		mutedColor.Fprintln(w, "Reviewing answered questions (back/next/jump).")
	}

	if s.Current == nil {
		infoColor.Fprintln(w, "Use next to load the first question.")
		return
	}
	r.entry(*s.Current, s.Session.TotalCount)
	r.progress(s)
}

func (r renderer) entry(e navigator.Entry, total int) {
	w := r.out
	q := e.Question
	position := fmt.Sprintf("Question %d", e.Position)
	if total > 0 {
		position = fmt.Sprintf("Question %d/%d", e.Position, total)
	}
	titleColor.Fprintf(w, "\n%s  [%s]\n", position, typeLabels[q.Type])
	fmt.Fprintln(w, q.Prompt)

	selected := make(map[int]bool, len(e.SelectedOptions))
	for _, i := range e.SelectedOptions {
		selected[i] = true
	}
	for i, opt := range q.Options {
		mark := "[ ]"
		if selected[i] {
			mark = selectedMark.Sprint("[x]")
		}
		fmt.Fprintf(w, "  %s %s. %s\n", mark, navigator.OptionLetter(i), opt)
	}

	switch {
	case e.Skipped:
		mutedColor.Fprintln(w, "Skipped.")
	case e.Answered:
		if e.UserAnswer != nil {
			fmt.Fprintf(w, "Your answer: %s\n", *e.UserAnswer)
		}
		if e.IsCorrect != nil && *e.IsCorrect {
			goodColor.Fprintln(w, "Correct!")
		} else {
			badColor.Fprintln(w, "Incorrect.")
		}
		if e.Feedback != nil {
			if e.Feedback.CorrectAnswer != "" {
				fmt.Fprintf(w, "Correct answer: %s\n", e.Feedback.CorrectAnswer)
			}
			if e.Feedback.Explanation != "" {
				mutedColor.Fprintln(w, e.Feedback.Explanation)
			}
		}
	default:
		if q.Type.IsChoice() {
			mutedColor.Fprintln(w, "pick <letter> then submit")
		} else {
			mutedColor.Fprintln(w, "submit <your answer>")
		}
	}
}

func (r renderer) progress(s navigator.Snapshot) {
	var moves []string
	if s.CanGoBack {
		moves = append(moves, "back")
	}
	if s.CanGoForward {
		moves = append(moves, "next")
	}
	if s.CanSkip {
		moves = append(moves, "skip")
	}
	if s.MaxJump > 1 {
		moves = append(moves, fmt.Sprintf("jump 1-%d", s.MaxJump))
	}
	mutedColor.Fprintf(r.out, "answered %d · correct %d · %s\n",
		s.Session.AnsweredCount, s.Session.CorrectCount, strings.Join(moves, " | "))
}

func (r renderer) summary(s navigator.Session) {
	titleColor.Fprintln(r.out, "\nSession finished")
	fmt.Fprintf(r.out, "Score: %d/%d (%d%%)\n", s.CorrectCount, s.TotalCount, s.ScorePercent())
	if s.AnsweredCount > 0 {
		fmt.Fprintf(r.out, "Accuracy on answered questions: %d%% of %d\n", s.AccuracyPercent(), s.AnsweredCount)
	}
	mutedColor.Fprintln(r.out, "Use generate for a new round, restart to keep the knowledge, or reset to start over.")
}

func (r renderer) err(err error) {
	badColor.Fprintf(r.out, "error: %v\n", err)
}

func (r renderer) history(page *quizapi.HistoryPage) {
	if len(page.Entries) == 0 {
		infoColor.Fprintln(r.out, "No answers recorded yet.")
		return
	}
	for _, rec := range page.Entries {
		verdict := badColor.Sprint("✗")
		if rec.IsCorrect {
			verdict = goodColor.Sprint("✓")
		}
		fmt.Fprintf(r.out, "%s %s  %-12s %s\n", verdict, rec.Timestamp.Local().Format("2006-01-02 15:04"), rec.Question.Identifier, rec.UserAnswer)
	}
	r.pagination(page.Pagination)
}

func (r renderer) sessions(list []quizapi.SessionSummary) {
	if len(list) == 0 {
		infoColor.Fprintln(r.out, "No sessions recorded yet.")
		return
	}
	for _, s := range list {
		fmt.Fprintf(r.out, "%s  %s  %d/%d correct (%.0f%%)  %s\n",
			s.StartedAt.Local().Format("2006-01-02 15:04"), s.SessionID, s.CorrectAnswers, s.TotalAnswers, s.Accuracy*100, s.Mode)
	}
}

func (r renderer) wrongBook(page *quizapi.WrongPage) {
	if len(page.Questions) == 0 {
		goodColor.Fprintln(r.out, "The wrong-question book is empty.")
		return
	}
	for _, wq := range page.Questions {
		fmt.Fprintf(r.out, "%-12s x%d  %s\n", wq.Question.Identifier, wq.WrongCount, wq.Question.Prompt)
	}
	r.pagination(page.Pagination)
}

func (r renderer) stats(s *quizapi.WrongStats) {
	titleColor.Fprintf(r.out, "Wrong questions: %d\n", s.TotalWrong)
	for t, n := range s.ByType {
		fmt.Fprintf(r.out, "  %-8s %d\n", t, n)
	}
	if len(s.WeakestTopics) > 0 {
		infoColor.Fprintln(r.out, "Weakest topics:")
		for _, tc := range s.WeakestTopics {
			fmt.Fprintf(r.out, "  %s (%d)\n", tc.Topic, tc.Count)
		}
	}
}

func (r renderer) pagination(p quizapi.Pagination) {
	mutedColor.Fprintf(r.out, "page %d/%d · %d total\n", p.Page, p.TotalPages, p.Total)
}
