package section

import (
	"context"
	"fmt"

	"github.com/sha367/smartPM/internal/domain/changelog"
	"github.com/sha367/smartPM/internal/table"
)

// EditCell sets one cell. Writing the current value is a no-op.
func (s *Store) EditCell(ctx context.Context, projectID, name string, row int, column, value string) error {
	if err := validateKey(projectID, name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, e, err := s.materializeLocked(ctx, projectID, name)
	if err != nil {
		return err
	}
	col := e.record.ColumnIndex(column)
	if col < 0 {
		return fmt.Errorf("%w: column %q not in section %q", ErrInvalidInput, column, name)
	}
	if row < 0 || row >= len(e.record.Rows) {
		return fmt.Errorf("%w: row %d out of range [0,%d)", ErrInvalidInput, row, len(e.record.Rows))
	}

	cells := e.record.Rows[row]
	for len(cells) < len(e.record.Columns) {
		cells = append(cells, "")
	}
	if cells[col] == value {
		return nil
	}
	old := cells[col]
	cells[col] = value
	e.record.Rows[row] = cells
	e.origin = OriginProject

	s.record(ctx, projectID, changelog.ActionEditData,
		fmt.Sprintf("Изменены данные в разделе: %s (строка %d, '%s': '%s' → '%s')", name, row+1, column, old, value))
	return nil
}

// AppendRow adds an empty row and returns its index.
func (s *Store) AppendRow(ctx context.Context, projectID, name string) (int, error) {
	if err := validateKey(projectID, name); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, e, err := s.materializeLocked(ctx, projectID, name)
	if err != nil {
		return 0, err
	}
	e.record.Rows = append(e.record.Rows, make([]string, len(e.record.Columns)))
	e.origin = OriginProject
	index := len(e.record.Rows) - 1

	s.record(ctx, projectID, changelog.ActionAddData, "Добавлена строка в раздел: "+name)
	return index, nil
}

// DeleteRow removes one row.
func (s *Store) DeleteRow(ctx context.Context, projectID, name string, row int) error {
	if err := validateKey(projectID, name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, e, err := s.materializeLocked(ctx, projectID, name)
	if err != nil {
		return err
	}
	if row < 0 || row >= len(e.record.Rows) {
		return fmt.Errorf("%w: row %d out of range [0,%d)", ErrInvalidInput, row, len(e.record.Rows))
	}
	e.record.Rows = append(e.record.Rows[:row], e.record.Rows[row+1:]...)
	e.origin = OriginProject

	s.record(ctx, projectID, changelog.ActionDeleteData, fmt.Sprintf("Удалена строка %d из раздела: %s", row+1, name))
	return nil
}

// Replace swaps the whole table, as produced by an editor. The incoming
// record is normalized first. It reports whether the content changed.
func (s *Store) Replace(ctx context.Context, projectID, name string, rec table.Record) (bool, error) {
	if err := validateKey(projectID, name); err != nil {
		return false, err
	}
	normalized, err := table.NormalizeSafe(table.FromRecord(name, rec), table.Options{Prefix: PrefixFor(name)})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, e, err := s.materializeLocked(ctx, projectID, name)
	if err != nil {
		return false, err
	}
	if e.record.Equal(normalized) {
		return false, nil
	}
	e.record = normalized
	e.origin = OriginProject

	s.record(ctx, projectID, changelog.ActionEditData, "Изменены данные в разделе: "+name)
	return true, nil
}
