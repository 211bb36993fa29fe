package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/formation/pkg/core/formation"
	"github.com/matzehuels/formation/pkg/core/stage"
	ferrors "github.com/matzehuels/formation/pkg/errors"
)

// document mirrors Project with pointer fields so missing required keys can
// be told apart from zero values.
type document struct {
	Meta        *Meta                  `json:"meta" yaml:"meta"`
	Stage       *stage.Config          `json:"stage" yaml:"stage"`
	Formations  *[]formation.Formation `json:"formations" yaml:"formations"`
	Current     int                    `json:"current" yaml:"current"`
	NextID      int                    `json:"nextId" yaml:"nextId"`
	Dancers     any                    `json:"dancers" yaml:"dancers"`
	Transitions any                    `json:"transitions" yaml:"transitions"`
}

func (d *document) project() (*Project, error) {
	switch {
	case d.Meta == nil:
		return nil, invalid("missing required key %q", "meta")
	case d.Stage == nil:
		return nil, invalid("missing required key %q", "stage")
	case d.Formations == nil:
		return nil, invalid("missing required key %q", "formations")
	}
	p := &Project{
		Meta:        *d.Meta,
		Stage:       *d.Stage,
		Formations:  *d.Formations,
		Current:     d.Current,
		NextID:      d.NextID,
		Dancers:     d.Dancers,
		Transitions: d.Transitions,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ReadJSON decodes and validates a project from r.
//
// ReadJSON returns an error if:
//   - The JSON is malformed
//   - "meta", "stage" or "formations" is missing
//   - The stage is out of bounds or there are no formations
//   - A formation has duplicate dancer IDs or two dancers on one cell
//
// No project is returned alongside an error. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Project, error) {
	var d document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidProject, err, "decode")
	}
	return d.project()
}

// ImportJSON reads the project file at path. The path must carry a .json
// extension.
func ImportJSON(path string) (*Project, error) {
	if err := ferrors.ValidateProjectPath(path); err != nil {
		return nil, err
	}
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ReadYAML decodes and validates a project written by [WriteYAML].
func ReadYAML(r io.Reader) (*Project, error) {
	var d document
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidProject, err, "decode yaml")
	}
	return d.project()
}

// ImportYAML reads a YAML project file at path.
func ImportYAML(path string) (*Project, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := ReadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ferrors.Wrap(ferrors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
