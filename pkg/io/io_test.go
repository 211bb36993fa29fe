package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/formation/pkg/core/formation"
	"github.com/matzehuels/formation/pkg/core/stage"
	ferrors "github.com/matzehuels/formation/pkg/errors"
)

const sampleJSON = `{
  "meta": {"appVersion": "1.0.0"},
  "stage": {"rows": 10, "cols": 15, "cellRatio": 1},
  "formations": [
    {"id": "a", "name": "Opening", "dancers": [
      {"id": "D1", "name": "Ann", "color": "#FF595E", "row": 0, "col": 0},
      {"id": "D3", "name": "", "color": "#1982C4", "row": 2, "col": 4}
    ]},
    {"id": "b", "name": "Scene 2", "dancers": [
      {"id": "D1", "name": "Ann", "color": "#FF595E", "row": 5, "col": 5}
    ]}
  ],
  "current": 1,
  "transitions": [{"from": 0, "to": 1}]
}`

func TestReadJSON(t *testing.T) {
	p, err := ReadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if len(p.Formations) != 2 {
		t.Fatalf("formations = %d, want 2", len(p.Formations))
	}
	if p.Current != 1 {
		t.Errorf("Current = %d, want 1", p.Current)
	}
	if p.NextID != 4 {
		t.Errorf("NextID = %d, want 4 (derived from D3)", p.NextID)
	}
	if got := p.Formations[0].Dancers[1].Label; got != "D3" {
		t.Errorf("empty label = %q, want default to id", got)
	}
	if p.Transitions == nil {
		t.Error("legacy transitions key should be preserved")
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", `{"meta": `},
		{"missing meta", `{"stage": {"rows": 1, "cols": 1, "cellRatio": 1}, "formations": [{}]}`},
		{"missing stage", `{"meta": {"appVersion": "1"}, "formations": [{}]}`},
		{"missing formations", `{"meta": {"appVersion": "1"}, "stage": {"rows": 1, "cols": 1, "cellRatio": 1}}`},
		{"empty version", `{"meta": {}, "stage": {"rows": 1, "cols": 1, "cellRatio": 1}, "formations": [{}]}`},
		{"no formations", `{"meta": {"appVersion": "1"}, "stage": {"rows": 1, "cols": 1, "cellRatio": 1}, "formations": []}`},
		{"bad stage", `{"meta": {"appVersion": "1"}, "stage": {"rows": 0, "cols": 1, "cellRatio": 1}, "formations": [{}]}`},
		{"current out of range", `{"meta": {"appVersion": "1"}, "stage": {"rows": 1, "cols": 1, "cellRatio": 1}, "formations": [{}], "current": 3}`},
		{"duplicate dancer", `{"meta": {"appVersion": "1"}, "stage": {"rows": 5, "cols": 5, "cellRatio": 1},
			"formations": [{"dancers": [{"id": "D1", "row": 0, "col": 0}, {"id": "D1", "row": 1, "col": 1}]}]}`},
		{"shared cell", `{"meta": {"appVersion": "1"}, "stage": {"rows": 5, "cols": 5, "cellRatio": 1},
			"formations": [{"dancers": [{"id": "D1", "row": 1, "col": 1}, {"id": "D2", "row": 1, "col": 1}]}]}`},
		{"negative cell", `{"meta": {"appVersion": "1"}, "stage": {"rows": 5, "cols": 5, "cellRatio": 1},
			"formations": [{"dancers": [{"id": "D1", "row": -1, "col": 1}]}]}`},
		{"bad color", `{"meta": {"appVersion": "1"}, "stage": {"rows": 5, "cols": 5, "cellRatio": 1},
			"formations": [{"dancers": [{"id": "D1", "color": "red", "row": 1, "col": 1}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ReadJSON(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("ReadJSON should fail")
			}
			if p != nil {
				t.Error("ReadJSON should not return a partial project")
			}
			if !ferrors.Is(err, ferrors.ErrCodeInvalidProject) {
				t.Errorf("code = %v, want %v", ferrors.GetCode(err), ferrors.ErrCodeInvalidProject)
			}
		})
	}
}

func TestReadJSONFillsDefaults(t *testing.T) {
	doc := `{"meta": {"appVersion": "1"}, "stage": {"rows": 5, "cols": 5, "cellRatio": 1},
		"formations": [{"dancers": []}, {"name": "Finale"}]}`
	p, err := ReadJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if p.Formations[0].ID == "" || p.Formations[0].ID == p.Formations[1].ID {
		t.Error("missing formation ids should be generated and distinct")
	}
	if p.Formations[0].Name != "Scene 1" || p.Formations[1].Name != "Finale" {
		t.Errorf("names = %q, %q", p.Formations[0].Name, p.Formations[1].Name)
	}
	if p.NextID != 1 {
		t.Errorf("NextID = %d, want 1", p.NextID)
	}
}

func TestOffStageDancersAccepted(t *testing.T) {
	doc := `{"meta": {"appVersion": "1"}, "stage": {"rows": 2, "cols": 2, "cellRatio": 1},
		"formations": [{"dancers": [{"id": "D1", "row": 9, "col": 9}]}]}`
	if _, err := ReadJSON(strings.NewReader(doc)); err != nil {
		t.Errorf("dancer beyond a shrunk stage should load: %v", err)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	orig, err := ReadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "show.json")
	if err := ExportJSON(orig, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}

	a, _ := Marshal(orig)
	b, _ := Marshal(got)
	if !bytes.Equal(a, b) {
		t.Errorf("round trip changed the project:\n%s\n---\n%s", a, b)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	orig, err := ReadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteYAML(orig, &buf); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	if !strings.Contains(buf.String(), "appVersion: 1.0.0") {
		t.Errorf("yaml output missing meta:\n%s", buf.String())
	}

	got, err := ReadYAML(&buf)
	if err != nil {
		t.Fatalf("ReadYAML: %v", err)
	}
	if got.Stage != orig.Stage || got.Current != orig.Current || got.NextID != orig.NextID {
		t.Errorf("ReadYAML header = %+v, want %+v", got, orig)
	}
	for i := range orig.Formations {
		if len(got.Formations[i].Dancers) != len(orig.Formations[i].Dancers) {
			t.Fatalf("formation %d dancers differ", i)
		}
		for j, d := range orig.Formations[i].Dancers {
			if got.Formations[i].Dancers[j] != d {
				t.Errorf("dancer %d/%d = %+v, want %+v", i, j, got.Formations[i].Dancers[j], d)
			}
		}
	}
}

func TestImportJSONPath(t *testing.T) {
	dir := t.TempDir()

	_, err := ImportJSON(filepath.Join(dir, "show.txt"))
	if !ferrors.Is(err, ferrors.ErrCodeInvalidPath) {
		t.Errorf("wrong extension: code = %v, want %v", ferrors.GetCode(err), ferrors.ErrCodeInvalidPath)
	}

	_, err = ImportJSON(filepath.Join(dir, "missing.json"))
	if !ferrors.Is(err, ferrors.ErrCodeFileNotFound) {
		t.Errorf("missing file: code = %v, want %v", ferrors.GetCode(err), ferrors.ErrCodeFileNotFound)
	}

	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte(`{}`), 0644)
	if _, err := ImportJSON(bad); !ferrors.Is(err, ferrors.ErrCodeInvalidProject) {
		t.Errorf("invalid content: code = %v, want %v", ferrors.GetCode(err), ferrors.ErrCodeInvalidProject)
	}
}

func TestTimelineConversion(t *testing.T) {
	tl := formation.NewTimeline()
	tl.Active().Add(formation.Dancer{ID: tl.NewDancerID(), Label: "D1", Row: 1, Col: 2})
	tl.AddFromActive()

	cfg := stage.Config{Rows: 4, Cols: 6, CellRatio: 2}
	p := FromTimeline(cfg, tl)
	if p.Meta.AppVersion == "" {
		t.Error("FromTimeline should stamp the app version")
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	back := p.Timeline()
	if back.Current != 1 || back.NextID != 2 || back.Len() != 2 {
		t.Errorf("Timeline() = current %d next %d len %d", back.Current, back.NextID, back.Len())
	}

	// The project holds copies, not the live timeline.
	tl.Active().Move("D1", 3, 3)
	if d, _ := p.Formations[1].Get("D1"); d.Row != 1 {
		t.Error("project should not alias the timeline")
	}
}

func TestScene(t *testing.T) {
	p := New(stage.Default())
	if _, err := p.Scene(0); err != nil {
		t.Errorf("Scene(0): %v", err)
	}
	_, err := p.Scene(1)
	if !ferrors.Is(err, ferrors.ErrCodeSceneNotFound) {
		t.Errorf("Scene(1) code = %v, want %v", ferrors.GetCode(err), ferrors.ErrCodeSceneNotFound)
	}
}

func TestExampleProjects(t *testing.T) {
	tests := []struct {
		file    string
		scenes  int
		current int
	}{
		{"quartet.json", 3, 0},
		{"solo.yaml", 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join("..", "..", "examples", "projects", tt.file)
			var (
				p   *Project
				err error
			)
			if filepath.Ext(path) == ".json" {
				p, err = ImportJSON(path)
			} else {
				p, err = ImportYAML(path)
			}
			if err != nil {
				t.Fatalf("import: %v", err)
			}
			if len(p.Formations) != tt.scenes || p.Current != tt.current {
				t.Errorf("scenes = %d, current = %d; want %d, %d", len(p.Formations), p.Current, tt.scenes, tt.current)
			}
		})
	}
}

func TestValidateLeavesProjectUntouchedOnError(t *testing.T) {
	p := &Project{
		Meta:  Meta{AppVersion: "1.0.0"},
		Stage: stage.Default(),
		Formations: []formation.Formation{
			{Dancers: []formation.Dancer{{ID: "D1", Row: 0, Col: 0}}},
			{ID: "b", Name: "Clash", Dancers: []formation.Dancer{
				{ID: "D1", Label: "D1", Row: 2, Col: 2},
				{ID: "D2", Label: "D2", Row: 2, Col: 2},
			}},
		},
	}

	err := p.Validate()
	if !ferrors.Is(err, ferrors.ErrCodeInvalidProject) {
		t.Fatalf("Validate() = %v, want %s", err, ferrors.ErrCodeInvalidProject)
	}
	first := p.Formations[0]
	if first.ID != "" || first.Name != "" || first.Dancers[0].Label != "" {
		t.Errorf("first formation = %+v, want it unchanged", first)
	}
	if p.NextID != 0 {
		t.Errorf("NextID = %d, want 0", p.NextID)
	}

	p.Formations[1].Dancers[1].Col = 3
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	first = p.Formations[0]
	if first.ID == "" || first.Name != "Scene 1" || first.Dancers[0].Label != "D1" {
		t.Errorf("first formation = %+v, want defaults filled", first)
	}
	if p.NextID != 3 {
		t.Errorf("NextID = %d, want 3", p.NextID)
	}
}
