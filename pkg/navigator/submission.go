package navigator

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// OptionLetter maps a 0-based option index to its answer letter: 0 is "A".
func OptionLetter(index int) string {
	return string(rune('A' + index))
}

// OptionIndex is the inverse of OptionLetter; ok is false for anything but a
// single letter within n options.
func OptionIndex(letter string, n int) (int, bool) {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if len(letter) != 1 {
		return 0, false
	}
	i := int(letter[0] - 'A')
	if i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

// Normalize turns the user's input for q into the wire answer. Choice
// questions read selected and ignore text; free-text questions read text.
func Normalize(q Question, selected []int, text string) (string, error) {
	switch q.Type {
	case SingleChoice:
		if len(selected) != 1 {
			return "", fmt.Errorf("%w: select exactly one option", ErrEmptyAnswer)
		}
		if err := checkOption(q, selected[0]); err != nil {
			return "", err
		}
		return OptionLetter(selected[0]), nil

	case MultiChoice:
		if len(selected) == 0 {
			return "", fmt.Errorf("%w: select at least one option", ErrEmptyAnswer)
		}
		uniq := make(map[int]struct{}, len(selected))
		idx := make([]int, 0, len(selected))
		for _, i := range selected {
			if err := checkOption(q, i); err != nil {
				return "", err
			}
			if _, dup := uniq[i]; dup {
				continue
			}
			uniq[i] = struct{}{}
			idx = append(idx, i)
		}
		sort.Ints(idx)
		var b strings.Builder
		for _, i := range idx {
			b.WriteString(OptionLetter(i))
		}
		return b.String(), nil

	case Cloze, QA:
		answer := strings.TrimSpace(text)
		if answer == "" {
			return "", ErrEmptyAnswer
		}
		return answer, nil

	default:
		return "", fmt.Errorf("%w: unknown question type %q", ErrValidation, q.Type)
	}
}

func checkOption(q Question, i int) error {
	if i < 0 || i >= len(q.Options) {
		return fmt.Errorf("%w: option %d of %d", ErrValidation, i, len(q.Options))
	}
	return nil
}

// SelectOption records a tentative choice on the entry at the cursor. Single
// choice replaces the selection; multi choice toggles the option.
func (n *Navigator) SelectOption(index int) (Snapshot, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	cur, err := n.openCurrent()
	if err != nil {
		return n.snapshot(), err
	}
	if !cur.Question.Type.IsChoice() {
		return n.snapshot(), fmt.Errorf("%w: %s questions take a text answer", ErrValidation, cur.Question.Type)
	}
	if err := checkOption(cur.Question, index); err != nil {
		return n.snapshot(), err
	}

	err = n.cache.update(n.cache.Cursor(), func(e *Entry) {
		if e.Question.Type == SingleChoice {
			e.SelectedOptions = []int{index}
			return
		}
		for i, s := range e.SelectedOptions {
			if s == index {
				e.SelectedOptions = append(e.SelectedOptions[:i], e.SelectedOptions[i+1:]...)
				return
			}
		}
		e.SelectedOptions = append(e.SelectedOptions, index)
	})
	return n.snapshot(), err
}

// ClearSelection drops every tentative choice on the entry at the cursor.
func (n *Navigator) ClearSelection() (Snapshot, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := n.openCurrent(); err != nil {
		return n.snapshot(), err
	}
	err := n.cache.update(n.cache.Cursor(), func(e *Entry) {
		e.SelectedOptions = nil
	})
	return n.snapshot(), err
}

// openCurrent returns the entry at the cursor if it still accepts input. Caller holds mu.
func (n *Navigator) openCurrent() (Entry, error) {
	if n.state == NoSession {
		return Entry{}, ErrNoSession
	}
	cur, ok := n.cache.Current()
	if !ok {
		return Entry{}, fmt.Errorf("%w: no question loaded", ErrOutOfRange)
	}
	if cur.Closed() {
		return Entry{}, ErrAlreadyAnswered
	}
	return cur, nil
}

// Submit answers the entry at the cursor. For choice questions the answer is
// built from the stored selection and text is ignored. On failure the entry is
// left untouched.
func (n *Navigator) Submit(ctx context.Context, text string) (Snapshot, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == Finished {
		if cur, ok := n.cache.Current(); ok && cur.Closed() {
			return n.snapshot(), ErrAlreadyAnswered
		}
		return n.snapshot(), ErrSessionFinished
	}
	cur, err := n.openCurrent()
	if err != nil {
		return n.snapshot(), err
	}
	if n.cache.Cursor() != n.cache.Len()-1 {
		return n.snapshot(), ErrNotCurrent
	}
	selected := append([]int(nil), cur.SelectedOptions...)
	answer, err := Normalize(cur.Question, selected, text)
	if err != nil {
		return n.snapshot(), err
	}

	t, err := n.begin(Submitting)
	if err != nil {
		return n.snapshot(), err
	}
	sid := n.session.ID

	n.mu.Unlock()
	verdict, err := n.svc.SubmitAnswer(ctx, sid, answer)
	n.mu.Lock()

	if !n.settle(t) {
		return n.snapshot(), ErrSuperseded
	}
	if err != nil {
		n.logger.Warn(logModule, "Answer submission failed", map[string]interface{}{
			"session_id": sid,
			"position":   cur.Position,
			"error":      err.Error(),
		})
		return n.snapshot(), classify(opSubmit, err, false)
	}

	if !cur.Question.Type.IsChoice() {
		selected = nil
	}
	err = n.cache.update(t.anchor, func(e *Entry) {
		correct := verdict.IsCorrect
		e.Answered = true
		e.UserAnswer = &answer
		e.SelectedOptions = selected
		e.IsCorrect = &correct
		e.Feedback = &Feedback{Explanation: verdict.Explanation, CorrectAnswer: verdict.CorrectAnswer}
		e.NextAvailable = verdict.NextAvailable
	})
	if err != nil {
		return n.snapshot(), err
	}

	n.session.AnsweredCount++
	if verdict.IsCorrect {
		n.session.CorrectCount++
	}
	n.logger.Debug(logModule, "Answer recorded", map[string]interface{}{
		"session_id": sid,
		"position":   cur.Position,
		"is_correct": verdict.IsCorrect,
	})

	if !verdict.NextAvailable {
		n.finish()
	}
	return n.snapshot(), nil
}
