package navigator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	single := choiceQuestion("s", 0)
	multi := single
	multi.Type = MultiChoice

	tests := []struct {
		name     string
		q        Question
		selected []int
		text     string
		want     string
		wantErr  error
	}{
		{"single first option", single, []int{0}, "", "A", nil},
		{"single third option", single, []int{2}, "ignored", "C", nil},
		{"single none", single, nil, "B", "", ErrEmptyAnswer},
		{"single two", single, []int{0, 1}, "", "", ErrValidation},
		{"single out of range", single, []int{4}, "", "", ErrValidation},
		{"multi sorted", multi, []int{2, 0}, "", "AC", nil},
		{"multi duplicate", multi, []int{3, 1, 3}, "", "BD", nil},
		{"multi none", multi, []int{}, "", "", ErrEmptyAnswer},
		{"cloze trimmed", Question{Type: Cloze}, nil, "  TCP  ", "TCP", nil},
		{"qa blank", Question{Type: QA}, nil, " \t\n", "", ErrEmptyAnswer},
		{"unknown type", Question{Type: "ESSAY"}, nil, "x", "", ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.q, tt.selected, tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptionIndex(t *testing.T) {
	i, ok := OptionIndex("c", 4)
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = OptionIndex("E", 4)
	assert.False(t, ok)
	_, ok = OptionIndex("AB", 4)
	assert.False(t, ok)
}

func TestSelectOption_SingleReplacesMultiToggles(t *testing.T) {
	multi := choiceQuestion("m", 0)
	multi.Type = MultiChoice
	multi.CorrectOptions = []int{0, 2}

	fx := newFixture(t, choiceQuestion("s", 1), multi)
	fx.generate(t, 2)

	_, err := fx.nav.SelectOption(0)
	require.NoError(t, err)
	snap, err := fx.nav.SelectOption(3)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, snap.Current.SelectedOptions)

	_, err = fx.nav.SelectOption(9)
	assert.ErrorIs(t, err, ErrValidation)

	fx.answerCorrectly(t)
	_, err = fx.nav.GoForward(context.Background())
	require.NoError(t, err)

	_, err = fx.nav.SelectOption(2)
	require.NoError(t, err)
	_, err = fx.nav.SelectOption(0)
	require.NoError(t, err)
	_, err = fx.nav.SelectOption(1)
	require.NoError(t, err)
	snap, err = fx.nav.SelectOption(1)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0}, snap.Current.SelectedOptions)

	snap, err = fx.nav.Submit(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "AC", *snap.Current.UserAnswer)
	assert.True(t, *snap.Current.IsCorrect)
}

func TestSelectOption_RejectedOnTextQuestion(t *testing.T) {
	fx := newFixture(t, Question{Identifier: "c", Type: Cloze, Prompt: "___ is connectionless", Explanation: "UDP"})
	fx.generate(t, 1)

	_, err := fx.nav.SelectOption(0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubmit_EmptyAnswerMakesNoCall(t *testing.T) {
	fx := newFixture(t, threeQuestions()...)
	fx.generate(t, 3)

	_, err := fx.nav.Submit(context.Background(), "B")
	assert.ErrorIs(t, err, ErrEmptyAnswer)
	assert.Equal(t, 0, fx.server.count("submit"))
}

func TestSubmit_IsIdempotent(t *testing.T) {
	fx := newFixture(t, threeQuestions()...)
	fx.generate(t, 3)

	first := fx.answerCorrectly(t)
	require.True(t, first.Current.Answered)

	_, err := fx.nav.SelectOption(0)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)

	second, err := fx.nav.Submit(context.Background(), "")
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
	assert.Equal(t, 1, fx.server.count("submit"))
	assert.Equal(t, first.Current, second.Current)
	assert.Equal(t, 1, second.Session.AnsweredCount)
}

func TestSubmit_NetworkFailureLeavesEntryUntouched(t *testing.T) {
	fx := newFixture(t, threeQuestions()...)
	fx.generate(t, 3)

	_, err := fx.nav.SelectOption(1)
	require.NoError(t, err)
	before := fx.nav.Snapshot()

	fx.server.submitErr = errConnRefused
	after, err := fx.nav.Submit(context.Background(), "")
	assert.ErrorIs(t, err, ErrNetworkFailure)
	assert.Equal(t, before.Current, after.Current)
	assert.Equal(t, before.Session, after.Session)
	assert.Equal(t, Idle, after.Phase)

	fx.server.submitErr = nil
	after, err = fx.nav.Submit(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, after.Current.Answered)
}

func TestSubmit_ServerRejectionIsNetworkFailure(t *testing.T) {
	fx := newFixture(t, threeQuestions()...)
	fx.generate(t, 3)
	_, _ = fx.nav.SelectOption(1)

	fx.server.submitErr = statusError{code: 400}
	snap, err := fx.nav.Submit(context.Background(), "")
	assert.ErrorIs(t, err, ErrNetworkFailure)
	assert.NotErrorIs(t, err, ErrInvalidSession)
	assert.Equal(t, Active, snap.State)
}

func TestSubmit_RevisitedEntryIsReadOnly(t *testing.T) {
	fx := newFixture(t, threeQuestions()...)
	fx.generate(t, 3)
	fx.answerCorrectly(t)
	_, err := fx.nav.GoForward(context.Background())
	require.NoError(t, err)
	_, err = fx.nav.GoBack()
	require.NoError(t, err)

	_, err = fx.nav.Submit(context.Background(), "x")
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
}
