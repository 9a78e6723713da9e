package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bfcb/quizmerit-backend/internal/model"
)

func mcqRequest(options ...model.QuestionOptionInput) *model.SaveQuestionRequest {
	return &model.SaveQuestionRequest{
		QuestionText: "Which planet is known as the red planet?",
		QuestionType: string(model.QuestionTypeMultipleChoice),
		TimeLimit:    60,
		Options:      options,
	}
}

func TestCreateTextQuestionDropsOptions(t *testing.T) {
	store := newFakeQuestionStore()
	svc := NewQuestionService(store)

	req := &model.SaveQuestionRequest{
		QuestionText: "Describe your favourite book.",
		QuestionType: string(model.QuestionTypeText),
		TimeLimit:    120,
		Options: []model.QuestionOptionInput{
			{OptionText: "stray", IsCorrect: true},
		},
	}

	q, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(q.Options) != 0 {
		t.Fatalf("expected options dropped for text question, got %d", len(q.Options))
	}
	if !q.IsActive {
		t.Fatalf("expected new question to be active")
	}
}

func TestCreateMultipleChoiceValidatesOptionSet(t *testing.T) {
	store := newFakeQuestionStore()
	svc := NewQuestionService(store)

	cases := []struct {
		name    string
		options []model.QuestionOptionInput
		wantErr bool
	}{
		{
			name:    "no options",
			options: nil,
			wantErr: true,
		},
		{
			name: "single option",
			options: []model.QuestionOptionInput{
				{OptionText: "Mars", IsCorrect: true},
			},
			wantErr: true,
		},
		{
			name: "no correct option",
			options: []model.QuestionOptionInput{
				{OptionText: "Mars"},
				{OptionText: "Venus"},
			},
			wantErr: true,
		},
		{
			name: "two correct options",
			options: []model.QuestionOptionInput{
				{OptionText: "Mars", IsCorrect: true},
				{OptionText: "Venus", IsCorrect: true},
			},
			wantErr: true,
		},
		{
			name: "valid set",
			options: []model.QuestionOptionInput{
				{OptionText: "Mars", IsCorrect: true},
				{OptionText: "Venus"},
				{OptionText: "Jupiter"},
			},
			wantErr: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), mcqRequest(tc.options...))
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidOptionSet) {
					t.Fatalf("expected ErrInvalidOptionSet, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("create: %v", err)
			}
		})
	}
}

func TestCreateMultipleChoiceAssignsPositions(t *testing.T) {
	store := newFakeQuestionStore()
	svc := NewQuestionService(store)

	q, err := svc.Create(context.Background(), mcqRequest(
		model.QuestionOptionInput{OptionText: "Mars", IsCorrect: true},
		model.QuestionOptionInput{OptionText: "Venus"},
	))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i, o := range q.Options {
		if o.Position != i {
			t.Fatalf("expected option %d at position %d, got %d", i, i, o.Position)
		}
	}
}

func TestUpdateUnknownQuestion(t *testing.T) {
	store := newFakeQuestionStore()
	svc := NewQuestionService(store)

	_, err := svc.Update(context.Background(), 42, &model.SaveQuestionRequest{
		QuestionText: "updated",
		QuestionType: string(model.QuestionTypeText),
		TimeLimit:    60,
	})
	if !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestDeleteUnreferencedQuestionRemovesRow(t *testing.T) {
	store := newFakeQuestionStore()
	svc := NewQuestionService(store)

	q, err := svc.Create(context.Background(), &model.SaveQuestionRequest{
		QuestionText: "unused",
		QuestionType: string(model.QuestionTypeText),
		TimeLimit:    60,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), q.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetByID(context.Background(), q.ID); err == nil {
		t.Fatalf("expected question to be gone")
	}
}

func TestDeleteReferencedQuestionDeactivates(t *testing.T) {
	store := newFakeQuestionStore()
	svc := NewQuestionService(store)

	q, err := svc.Create(context.Background(), &model.SaveQuestionRequest{
		QuestionText: "answered already",
		QuestionType: string(model.QuestionTypeText),
		TimeLimit:    60,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	store.referenced[q.ID] = true

	if err := svc.Delete(context.Background(), q.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	stored, err := store.GetByID(context.Background(), q.ID)
	if err != nil {
		t.Fatalf("expected question kept for existing answers: %v", err)
	}
	if stored.IsActive {
		t.Fatalf("expected question deactivated")
	}

	// Participants no longer see it.
	active, err := svc.ListActive(context.Background())
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	for _, a := range active {
		if a.ID == q.ID {
			t.Fatalf("deactivated question still listed as active")
		}
	}

	// The admin still does.
	all, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	found := false
	for _, a := range all {
		if a.ID == q.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("deactivated question missing from admin listing")
	}
}
