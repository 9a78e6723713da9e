package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bfcb/quizmerit-backend/internal/model"
	"github.com/bfcb/quizmerit-backend/internal/repository"
)

func intPtr(n int) *int { return &n }

func TestMeritListOrdersByScoreThenTime(t *testing.T) {
	store := &fakeMeritStore{aggregates: []repository.MeritAggregate{
		{UserID: 1, FullName: "Alice", Handle: "alice.fb", TotalScore: 25, ResponseTime: 300, ResponseCount: 3, EvaluatedCount: 3},
		{UserID: 2, FullName: "Bob", Handle: "bob.fb", TotalScore: 25, ResponseTime: 250, ResponseCount: 3, EvaluatedCount: 3},
		{UserID: 3, FullName: "Carol", Handle: "carol.fb", TotalScore: 30, ResponseTime: 900, ResponseCount: 3, EvaluatedCount: 3},
		{UserID: 4, FullName: "Dave", Handle: "dave.fb", TotalScore: 10, ResponseTime: 100, ResponseCount: 3, EvaluatedCount: 3},
	}}
	svc := NewMeritService(store)

	entries, err := svc.ComputeMeritList(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	// Higher score wins regardless of time; on equal score the faster
	// participant ranks first.
	wantOrder := []string{"carol.fb", "bob.fb", "alice.fb", "dave.fb"}
	if len(entries) != len(wantOrder) {
		t.Fatalf("expected %d entries, got %d", len(wantOrder), len(entries))
	}
	for i, want := range wantOrder {
		if entries[i].Handle != want {
			t.Fatalf("rank %d: expected %q, got %q", i+1, want, entries[i].Handle)
		}
	}
}

func TestMeritListTiesBreakOnHandle(t *testing.T) {
	store := &fakeMeritStore{aggregates: []repository.MeritAggregate{
		{UserID: 2, FullName: "B", Handle: "bbb", TotalScore: 10, ResponseTime: 100, ResponseCount: 1, EvaluatedCount: 1},
		{UserID: 1, FullName: "A", Handle: "aaa", TotalScore: 10, ResponseTime: 100, ResponseCount: 1, EvaluatedCount: 1},
	}}
	svc := NewMeritService(store)

	entries, err := svc.ComputeMeritList(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if entries[0].Handle != "aaa" || entries[1].Handle != "bbb" {
		t.Fatalf("expected deterministic handle order, got %q then %q", entries[0].Handle, entries[1].Handle)
	}
}

func TestMeritListFallsBackToSessionTime(t *testing.T) {
	store := &fakeMeritStore{aggregates: []repository.MeritAggregate{
		{UserID: 1, FullName: "Alice", Handle: "alice.fb", TotalScore: 5,
			ResponseTime: 0, SessionTime: intPtr(420), ResponseCount: 2, EvaluatedCount: 2},
	}}
	svc := NewMeritService(store)

	entries, err := svc.ComputeMeritList(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if entries[0].TotalTimeSpent != 420 {
		t.Fatalf("expected session total fallback 420, got %d", entries[0].TotalTimeSpent)
	}
}

func TestMeritListEvaluationStatus(t *testing.T) {
	store := &fakeMeritStore{aggregates: []repository.MeritAggregate{
		{UserID: 1, FullName: "Done", Handle: "done", TotalScore: 9, ResponseTime: 60, ResponseCount: 2, EvaluatedCount: 2},
		{UserID: 2, FullName: "Half", Handle: "half", TotalScore: 4, ResponseTime: 60, ResponseCount: 2, EvaluatedCount: 1},
		{UserID: 3, FullName: "None", Handle: "none", TotalScore: 0, ResponseTime: 60, ResponseCount: 2, EvaluatedCount: 0},
	}}
	svc := NewMeritService(store)

	entries, err := svc.ComputeMeritList(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	byHandle := make(map[string]model.MeritEntry, len(entries))
	for _, e := range entries {
		byHandle[e.Handle] = e
	}
	if byHandle["done"].EvaluationStatus != model.MeritStatusCompleted {
		t.Fatalf("expected fully graded participant marked completed")
	}
	if byHandle["half"].EvaluationStatus != model.MeritStatusPending {
		t.Fatalf("expected partially graded participant marked pending")
	}
	if byHandle["none"].EvaluationStatus != model.MeritStatusPending {
		t.Fatalf("expected ungraded participant marked pending")
	}
}

func TestExportCSVShape(t *testing.T) {
	store := &fakeMeritStore{aggregates: []repository.MeritAggregate{
		{UserID: 1, FullName: "Alice", Handle: "alice.fb", TotalScore: 9.5, ResponseTime: 125, ResponseCount: 1, EvaluatedCount: 1},
		{UserID: 2, FullName: "Bob", Handle: "bob.fb", TotalScore: 7, ResponseTime: 65, ResponseCount: 1, EvaluatedCount: 1},
	}}
	svc := NewMeritService(store)

	data, err := svc.ExportCSV(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %d lines", len(lines))
	}
	if lines[0] != "Rank,Name,Handle,Total Score,Time Spent,Status" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != "1,Alice,alice.fb,9.5,2:05,completed" {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
	if lines[2] != "2,Bob,bob.fb,7,1:05,completed" {
		t.Fatalf("unexpected second row: %q", lines[2])
	}
}
