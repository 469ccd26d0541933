// Package jsonstore persists the project registry and the change log as JSON
// documents, replacing each file atomically on write.
package jsonstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sha367/smartPM/internal/repository"
)

const tempFilePrefix = ".smartpm-tmp-"

// readDocument decodes the JSON document at path into v.
func readDocument(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("document %s: %w", path, repository.ErrNotFound)
		}
		return fmt.Errorf("read document %s: %w: %v", path, repository.ErrParse, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("document %s is empty: %w", path, repository.ErrParse)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode document %s: %w: %v", path, repository.ErrParse, err)
	}
	return nil
}

// writeDocument replaces the document at path with v. The previous content
// survives any failure.
func writeDocument(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode document %s: %w: %v", path, repository.ErrPersist, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare dir for %s: %w: %v", path, repository.ErrPersist, err)
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write document %s: %w: %v", path, repository.ErrPersist, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), tempFilePrefix+"*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
