// Package io reads and writes formation project files.
//
// # JSON Format
//
// A project is a single JSON object. Three keys are required:
//
//	{
//	  "meta": {"appVersion": "1.0.0"},
//	  "stage": {"rows": 10, "cols": 15, "cellRatio": 1},
//	  "formations": [
//	    {
//	      "id": "7f1c...",
//	      "name": "Scene 1",
//	      "dancers": [
//	        {"id": "D1", "name": "Ann", "color": "#FF595E", "row": 0, "col": 0}
//	      ]
//	    }
//	  ],
//	  "current": 0,
//	  "nextId": 2
//	}
//
// "current" and "nextId" are optional. When "nextId" is missing or too small
// it is raised past the highest "D<n>" dancer ID so reloaded projects never
// reuse an identity. The legacy top-level "dancers" and "transitions" keys
// are accepted and written back unchanged.
//
// # Validation
//
// [ReadJSON] and [ImportJSON] validate the whole document before returning:
// required keys present, stage within bounds, at least one formation, and in
// every formation unique dancer IDs with no two dancers on one cell. Loading
// is all-or-nothing: on any error no project is returned. Errors carry the
// INVALID_PROJECT code (or INVALID_PATH / FILE_NOT_FOUND for file problems).
//
// Dancers outside the stage bounds are accepted, since shrinking the stage
// does not move existing dancers.
//
// # Export
//
// [WriteJSON] and [ExportJSON] write indented JSON; [ExportJSON] replaces the
// target file atomically. [WriteYAML] and [ReadYAML] provide the same document
// as YAML for the convert command.
package io
