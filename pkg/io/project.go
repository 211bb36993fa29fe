package io

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/matzehuels/formation/pkg/buildinfo"
	"github.com/matzehuels/formation/pkg/core/formation"
	"github.com/matzehuels/formation/pkg/core/stage"
	ferrors "github.com/matzehuels/formation/pkg/errors"
)

// Meta describes the application that wrote a project.
type Meta struct {
	AppVersion string `json:"appVersion" yaml:"appVersion"`
}

// Project is the on-disk form of an editing session.
type Project struct {
	Meta       Meta                  `json:"meta" yaml:"meta"`
	Stage      stage.Config          `json:"stage" yaml:"stage"`
	Formations []formation.Formation `json:"formations" yaml:"formations"`
	Current    int                   `json:"current" yaml:"current"`
	NextID     int                   `json:"nextId,omitempty" yaml:"nextId,omitempty"`

	// Legacy keys, kept verbatim.
	Dancers     any `json:"dancers,omitempty" yaml:"dancers,omitempty"`
	Transitions any `json:"transitions,omitempty" yaml:"transitions,omitempty"`
}

// New returns an empty project on the given stage.
func New(cfg stage.Config) *Project {
	return FromTimeline(cfg, formation.NewTimeline())
}

// FromTimeline captures a timeline and stage as a project stamped with the
// running version.
func FromTimeline(cfg stage.Config, tl *formation.Timeline) *Project {
	tl = tl.Clone()
	return &Project{
		Meta:       Meta{AppVersion: buildinfo.AppVersion()},
		Stage:      cfg,
		Formations: tl.Formations,
		Current:    tl.Current,
		NextID:     tl.NextID,
	}
}

// Timeline returns a timeline holding a deep copy of the project's
// formations.
func (p *Project) Timeline() *formation.Timeline {
	tl := (&formation.Timeline{
		Formations: p.Formations,
		Current:    p.Current,
		NextID:     p.NextID,
	}).Clone()
	if floor := tl.MinNextID(); tl.NextID < floor {
		tl.NextID = floor
	}
	return tl
}

// Scene returns formation i.
func (p *Project) Scene(i int) (*formation.Formation, error) {
	if i < 0 || i >= len(p.Formations) {
		return nil, ferrors.New(ferrors.ErrCodeSceneNotFound, "scene %d does not exist (project has %d)", i, len(p.Formations))
	}
	return &p.Formations[i], nil
}

// Validate checks the project and then fills in derivable defaults: missing
// formation IDs and names, dancer labels, and the ID counter. The project is
// left untouched when an error is returned.
func (p *Project) Validate() error {
	if err := p.check(); err != nil {
		return err
	}
	p.normalize()
	return nil
}

func (p *Project) check() error {
	if p.Meta.AppVersion == "" {
		return invalid("meta.appVersion is required")
	}
	if err := p.Stage.Validate(); err != nil {
		return ferrors.Wrap(ferrors.ErrCodeInvalidProject, err, "stage")
	}
	if len(p.Formations) == 0 {
		return invalid("at least one formation is required")
	}
	if p.Current < 0 || p.Current >= len(p.Formations) {
		return invalid("current scene %d out of range", p.Current)
	}

	onGrid := func(row, col int) bool { return row >= 0 && col >= 0 }
	ids := make(map[string]struct{}, len(p.Formations))
	for i := range p.Formations {
		f := &p.Formations[i]
		name := f.Name
		if name == "" {
			name = formation.SceneName(i + 1)
		}
		if f.ID != "" {
			if _, dup := ids[f.ID]; dup {
				return invalid("duplicate formation id %q", f.ID)
			}
			ids[f.ID] = struct{}{}
		}
		if err := f.Check(onGrid); err != nil {
			return ferrors.Wrap(ferrors.ErrCodeInvalidProject, err, "formation %q", name)
		}
		for _, d := range f.Dancers {
			if d.Color == "" {
				continue
			}
			if err := ferrors.ValidateColor(d.Color); err != nil {
				return ferrors.Wrap(ferrors.ErrCodeInvalidProject, err, "formation %q dancer %q", name, d.ID)
			}
		}
	}
	return nil
}

func (p *Project) normalize() {
	for i := range p.Formations {
		f := &p.Formations[i]
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		if f.Name == "" {
			f.Name = formation.SceneName(i + 1)
		}
		for j := range f.Dancers {
			if d := &f.Dancers[j]; d.Label == "" {
				d.Label = d.ID
			}
		}
	}
	if floor := p.Timeline().MinNextID(); p.NextID < floor {
		p.NextID = floor
	}
}

func invalid(format string, args ...any) error {
	return ferrors.New(ferrors.ErrCodeInvalidProject, "%s", fmt.Sprintf(format, args...))
}
