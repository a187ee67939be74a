// Package paths derives every input and output location of a benchmark run
// from the dataset and method names.
package paths

import (
	"fmt"
	"path/filepath"
)

const (
	DefaultDatasetsRoot = "ETH3D"
	DefaultOutputDir    = "output"
)

// Layout holds the two roots every derived path hangs from.
type Layout struct {
	DatasetsRoot string
	OutputDir    string
}

// DefaultLayout returns the layout used when no configuration overrides it.
func DefaultLayout() Layout {
	return Layout{
		DatasetsRoot: DefaultDatasetsRoot,
		OutputDir:    DefaultOutputDir,
	}
}

// Set is the fixed record of locations used by the pipeline stages.
type Set struct {
	Dataset   string
	Scan      string
	Images    string
	MatchList string

	Matches  string
	Solution string

	RefPointCloud string
	RawPointCloud string

	RefReport string
	RawReport string
}

// Resolve maps (dataset, method) to its path set. It performs no I/O.
func Resolve(layout Layout, dataset, method string) Set {
	datasetPath := filepath.Join(layout.DatasetsRoot, dataset)
	prefix := fmt.Sprintf("%s-%s", method, dataset)

	return Set{
		Dataset:       datasetPath,
		Scan:          filepath.Join(datasetPath, "dslr_scan_eval", "scan_alignment.mlp"),
		Images:        filepath.Join(datasetPath, "images"),
		MatchList:     filepath.Join(datasetPath, "match-list.txt"),
		Matches:       filepath.Join(layout.OutputDir, prefix+"-matches.pb"),
		Solution:      filepath.Join(layout.OutputDir, prefix+"-solution.pb"),
		RefPointCloud: filepath.Join(datasetPath, fmt.Sprintf("sparse-%s-ref.ply", method)),
		RawPointCloud: filepath.Join(datasetPath, fmt.Sprintf("sparse-%s-raw.ply", method)),
		RefReport:     filepath.Join(layout.OutputDir, prefix+"-ref.txt"),
		RawReport:     filepath.Join(layout.OutputDir, prefix+"-raw.txt"),
	}
}

// Fields returns the set as ordered name/path pairs, for display.
func (s Set) Fields() [][2]string {
	return [][2]string{
		{"dataset", s.Dataset},
		{"scan", s.Scan},
		{"images", s.Images},
		{"match_list", s.MatchList},
		{"matches", s.Matches},
		{"solution", s.Solution},
		{"ref_point_cloud", s.RefPointCloud},
		{"raw_point_cloud", s.RawPointCloud},
		{"ref_report", s.RefReport},
		{"raw_report", s.RawReport},
	}
}
