package section

import (
	"context"
	"fmt"
	"time"

	"github.com/sha367/smartPM/internal/domain/project"
	"github.com/sha367/smartPM/internal/table"
)

// ProjectEffect is the financial effect of one project per rollup year.
type ProjectEffect struct {
	ProjectID string             `json:"project_id"`
	Effects   map[string]float64 `json:"effects"`
}

// Summary aggregates portfolio metrics across projects.
type Summary struct {
	ProjectCount int `json:"project_count"`
	// EffectByYear sums the first financial-effect row per rollup year.
	EffectByYear map[string]float64 `json:"effect_by_year"`
	Projects     []ProjectEffect    `json:"projects"`
	// AvgTargetConversion averages the positive target conversions found.
	AvgTargetConversion float64 `json:"avg_target_conversion"`
	ConversionSamples   int     `json:"conversion_samples"`
}

// Summarize computes portfolio metrics for the given projects. Missing
// columns contribute nothing; unparseable values count as zero.
func (s *Store) Summarize(ctx context.Context, projectIDs []string) Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := Summary{
		ProjectCount: len(projectIDs),
		EffectByYear: make(map[string]float64, len(RollupYears)),
		Projects:     make([]ProjectEffect, 0, len(projectIDs)),
	}
	var conversionTotal float64

	for _, id := range projectIDs {
		effect := ProjectEffect{ProjectID: id, Effects: map[string]float64{}}
		if finance, ok := s.peekLocked(ctx, id, project.SectionFinance); ok {
			for _, year := range RollupYears {
				value, ok := firstRow(finance, year)
				if !ok {
					continue
				}
				n := table.NumberOrZero(value)
				effect.Effects[year] = n
				summary.EffectByYear[year] += n
			}
		}
		summary.Projects = append(summary.Projects, effect)

		if support, ok := s.peekLocked(ctx, id, project.SectionSupport); ok {
			if value, ok := firstRow(support, ColumnFutureState); ok {
				if conv := table.NumberOrZero(value); conv > 0 {
					conversionTotal += conv
					summary.ConversionSamples++
				}
			}
		}
	}
	if summary.ConversionSamples > 0 {
		summary.AvgTargetConversion = conversionTotal / float64(summary.ConversionSamples)
	}
	return summary
}

func firstRow(rec table.Record, column string) (string, bool) {
	if rec.ColumnIndex(column) < 0 {
		return "", false
	}
	if rec.IsEmpty() {
		return "0", true
	}
	return rec.Cell(0, column)
}

// Task is one schedule row. Valid is false when either date is missing or
// unparseable, or the end precedes the start.
type Task struct {
	Name  string
	Start time.Time
	End   time.Time
	Valid bool
}

// ScheduleTasks reads the project's schedule section. It returns ErrNoSchedule
// when the section has no task column.
func (s *Store) ScheduleTasks(ctx context.Context, projectID string) ([]Task, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: project id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	rec, ok := s.peekLocked(ctx, projectID, project.SectionSchedule)
	if ok {
		rec = rec.Clone()
	}
	s.mu.Unlock()

	names, hasTasks := rec.Column(ColumnTask)
	if !ok || !hasTasks {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNoSchedule)
	}

	tasks := make([]Task, 0, len(names))
	for i, name := range names {
		task := Task{Name: name}
		startText, _ := rec.Cell(i, ColumnStart)
		endText, _ := rec.Cell(i, ColumnEnd)
		start, startOK := table.ParseDate(startText)
		end, endOK := table.ParseDate(endText)
		if startOK {
			task.Start = start
		}
		if endOK {
			task.End = end
		}
		task.Valid = startOK && endOK && !end.Before(start)
		tasks = append(tasks, task)
	}
	return tasks, nil
}
