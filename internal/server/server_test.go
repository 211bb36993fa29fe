package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/matzehuels/formation/pkg/core/formation"
	"github.com/matzehuels/formation/pkg/core/stage"
	pio "github.com/matzehuels/formation/pkg/io"
	"github.com/matzehuels/formation/pkg/render"
)

func testProject() *pio.Project {
	tl := formation.NewTimeline()
	tl.Active().Add(formation.Dancer{ID: "D1", Label: "Ann", Color: "#FF595E", Row: 0, Col: 0})
	tl.Active().Add(formation.Dancer{ID: "D2", Label: "Bob", Color: "#1982C4", Row: 1, Col: 1})
	tl.NextID = 3
	tl.AddFromActive()
	tl.Active().Move("D1", 4, 4)
	tl.SetCurrent(0)
	return pio.FromTimeline(stage.Default(), tl)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(testProject(), "", nil, render.DefaultOptions(), nil)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t), "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestProjectSummary(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/project")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got projectSummary
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Scenes) != 2 {
		t.Fatalf("len(Scenes) = %d, want 2", len(got.Scenes))
	}
	if got.Scenes[1].Name != "Scene 2" || got.Scenes[1].Dancers != 2 {
		t.Errorf("Scenes[1] = %+v", got.Scenes[1])
	}
	if got.Stage.Rows != 10 {
		t.Errorf("Stage.Rows = %d, want 10", got.Stage.Rows)
	}
}

func TestSceneJSON(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/scenes/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got sceneView
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Dancers) != 2 || got.Dancers[0].Row != 4 || got.Dancers[0].Col != 4 {
		t.Errorf("Dancers = %+v", got.Dancers)
	}
}

func TestSceneSVG(t *testing.T) {
	rec := get(t, newTestServer(t), "/scenes/0.svg")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `id="dancer-D1"`) {
		t.Error("scene SVG should contain dancer D1")
	}
}

func TestScenePNG(t *testing.T) {
	rec := get(t, newTestServer(t), "/scenes/0.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "\x89PNG") {
		t.Error("body is not a PNG")
	}
}

func TestFrameSVG(t *testing.T) {
	s := newTestServer(t)
	n := len(render.FrameTimes(s.opts.Duration, s.opts.FPS))

	if rec := get(t, s, "/transitions/0/1/frames/0.svg"); rec.Code != http.StatusOK {
		t.Errorf("first frame status = %d, want %d", rec.Code, http.StatusOK)
	}
	rec := get(t, s, "/transitions/0/1/frames/"+strconv.Itoa(n-1)+".svg")
	if rec.Code != http.StatusOK {
		t.Fatalf("last frame status = %d, want %d", rec.Code, http.StatusOK)
	}
	// The last frame is the destination: D1 at row 4, col 4.
	if !strings.Contains(rec.Body.String(), `cx="180.0"`) {
		t.Errorf("last frame should show D1 at its destination:\n%s", rec.Body.String())
	}
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		path string
		code string
	}{
		{"/api/scenes/7", "SCENE_NOT_FOUND"},
		{"/api/scenes/x", "NOT_FOUND"},
		{"/scenes/9.svg", "SCENE_NOT_FOUND"},
		{"/scenes/0.gif", "NOT_FOUND"},
		{"/transitions/0/5/frames/0.svg", "SCENE_NOT_FOUND"},
		{"/transitions/0/1/frames/999.svg", "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, s, tt.path)
			if rec.Code != http.StatusNotFound {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
			}
			var body errorBody
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
		})
	}
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.json")
	if err := pio.ExportJSON(testProject(), path); err != nil {
		t.Fatal(err)
	}
	s := New(pio.New(stage.Default()), path, nil, render.DefaultOptions(), nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reload", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := len(s.Project().Formations); got != 2 {
		t.Errorf("after reload len(Formations) = %d, want 2", got)
	}
}

func TestReloadWithoutPath(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reload", nil))
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotImplemented)
	}
}
