package workbook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sha367/smartPM/internal/repository"
	"github.com/sha367/smartPM/internal/table"
	"github.com/xuri/excelize/v2"
)

const (
	maxSheetNameRunes = 31
	invalidSheetRunes = `[]:*?/\`
	tempFilePrefix    = ".smartpm-tmp-"
)

// Sheet is one named record written to a backup workbook.
type Sheet struct {
	Name   string
	Record table.Record
}

// WriteBackup writes one sheet per record to a new workbook at path. The file
// is replaced atomically; on failure the previous file is left untouched and
// the error wraps repository.ErrPersist.
func WriteBackup(path string, sheets []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	used := make(map[string]struct{}, len(sheets))
	for i, sheet := range sheets {
		name := SheetName(sheet.Name, used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("name sheet %q: %w: %v", name, repository.ErrPersist, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w: %v", name, repository.ErrPersist, err)
		}
		if err := writeRecord(f, name, sheet.Record); err != nil {
			return fmt.Errorf("write sheet %q: %w: %v", name, repository.ErrPersist, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare backup dir: %w: %v", repository.ErrPersist, err)
	}
	if err := saveAtomic(f, path); err != nil {
		return fmt.Errorf("save backup %s: %w: %v", path, repository.ErrPersist, err)
	}
	return nil
}

func writeRecord(f *excelize.File, sheet string, rec table.Record) error {
	header := make([]any, len(rec.Columns))
	for i, c := range rec.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for r, row := range rec.Rows {
		cells := make([]any, len(rec.Columns))
		for c := range cells {
			if c < len(row) {
				cells[c] = row[c]
			} else {
				cells[c] = ""
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}
	return nil
}

func saveAtomic(f *excelize.File, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), tempFilePrefix+"*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// ErrSheetName is returned by CheckSheetName for names a workbook cannot hold
// verbatim.
var ErrSheetName = errors.New("invalid sheet name")

// CheckSheetName reports whether name survives SheetName unchanged, apart
// from de-duplication.
func CheckSheetName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name is blank", ErrSheetName)
	case utf8.RuneCountInString(name) > maxSheetNameRunes:
		return fmt.Errorf("%w: %q is longer than %d characters", ErrSheetName, name, maxSheetNameRunes)
	case strings.ContainsAny(name, invalidSheetRunes):
		return fmt.Errorf("%w: %q contains one of %s", ErrSheetName, name, invalidSheetRunes)
	case cleanSheetName(name) != name:
		return fmt.Errorf("%w: %q starts or ends with a space or apostrophe", ErrSheetName, name)
	}
	return nil
}

// SheetName maps a section name onto a valid, unique xlsx sheet name: at most
// 31 runes, none of []:*?/\ and no surrounding apostrophes. used tracks names
// already taken in the workbook, compared case-insensitively.
func SheetName(name string, used map[string]struct{}) string {
	clean := cleanSheetName(name)
	if clean == "" {
		clean = "Sheet"
	}
	clean = truncateRunes(clean, maxSheetNameRunes)

	candidate := clean
	for n := 2; ; n++ {
		if _, taken := used[strings.ToLower(candidate)]; !taken {
			break
		}
		suffix := " (" + strconv.Itoa(n) + ")"
		candidate = truncateRunes(clean, maxSheetNameRunes-utf8.RuneCountInString(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = struct{}{}
	return candidate
}

func cleanSheetName(name string) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidSheetRunes, r) {
			return '_'
		}
		return r
	}, name)
	return strings.Trim(clean, "' ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
