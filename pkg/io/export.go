package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteJSON encodes p as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(p *Project, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes p to a JSON file at path. The file is replaced
// atomically, so an interrupted save leaves the previous version intact.
func ExportJSON(p *Project, path string) error {
	var buf bytes.Buffer
	if err := WriteJSON(p, &buf); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

// WriteYAML encodes p as YAML and writes it to w.
func WriteYAML(p *Project, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// ExportYAML writes p to a YAML file at path.
func ExportYAML(p *Project, path string) error {
	var buf bytes.Buffer
	if err := WriteYAML(p, &buf); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

// Marshal returns the canonical JSON encoding of p. Identical projects
// produce identical bytes, which makes the output usable as a cache key
// source.
func Marshal(p *Project) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(p, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
