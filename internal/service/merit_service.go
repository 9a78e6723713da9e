package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"github.com/bfcb/quizmerit-backend/internal/model"
	"github.com/bfcb/quizmerit-backend/internal/repository"
)

// MeritStore supplies the raw per-user aggregates.
// *repository.MeritRepository implements it.
type MeritStore interface {
	CollectAggregates(ctx context.Context) ([]repository.MeritAggregate, error)
}

// MeritService turns graded responses into the ranked merit list. Entries
// are recomputed from source tables on every call, never persisted.
type MeritService struct {
	aggregates MeritStore
}

// NewMeritService creates a new MeritService.
func NewMeritService(aggregates MeritStore) *MeritService {
	return &MeritService{aggregates: aggregates}
}

// ComputeMeritList returns one entry per participant with at least one
// response, ordered by total score descending with ties broken by total
// time ascending (faster completion ranks higher on equal score).
func (s *MeritService) ComputeMeritList(ctx context.Context) ([]model.MeritEntry, error) {
	aggregates, err := s.aggregates.CollectAggregates(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect aggregates: %w", err)
	}

	entries := make([]model.MeritEntry, 0, len(aggregates))
	for _, a := range aggregates {
		totalTime := a.ResponseTime
		if totalTime == 0 && a.SessionTime != nil {
			totalTime = *a.SessionTime
		}

		status := model.MeritStatusPending
		if a.ResponseCount > 0 && a.EvaluatedCount == a.ResponseCount {
			status = model.MeritStatusCompleted
		}

		entries = append(entries, model.MeritEntry{
			UserID:           a.UserID,
			FullName:         a.FullName,
			Handle:           a.Handle,
			TotalScore:       a.TotalScore,
			TotalTimeSpent:   totalTime,
			EvaluationStatus: status,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		if entries[i].TotalTimeSpent != entries[j].TotalTimeSpent {
			return entries[i].TotalTimeSpent < entries[j].TotalTimeSpent
		}
		return entries[i].Handle < entries[j].Handle
	})

	return entries, nil
}

// ExportCSV renders the ranked merit list as CSV with a header row.
func (s *MeritService) ExportCSV(ctx context.Context) ([]byte, error) {
	entries, err := s.ComputeMeritList(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Rank", "Name", "Handle", "Total Score", "Time Spent", "Status"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, e := range entries {
		record := []string{
			strconv.Itoa(i + 1),
			e.FullName,
			e.Handle,
			strconv.FormatFloat(e.TotalScore, 'f', -1, 64),
			formatDuration(e.TotalTimeSpent),
			e.EvaluationStatus,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// formatDuration renders seconds as m:ss for the export.
func formatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
