package cli

import (
	"reflect"
	"testing"

	"github.com/qweave/metalize/pkg/pipeline"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "empty selects all", input: "", want: nil},
		{name: "single id", input: "3", want: []int{3}},
		{name: "multiple ids", input: "1,2,5", want: []int{1, 2, 5}},
		{name: "whitespace tolerated", input: " 1, 2 ", want: []int{1, 2}},
		{name: "non-numeric id", input: "1,abc", wantErr: true},
		{name: "trailing comma", input: "1,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSelection(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSelection(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseSelection(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestArtifactExt(t *testing.T) {
	if got := artifactExt(pipeline.BackendScript); got != ".py" {
		t.Errorf("artifactExt(script) = %q, want .py", got)
	}
	if got := artifactExt(pipeline.BackendOps); got != ".json" {
		t.Errorf("artifactExt(ops) = %q, want .json", got)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name       string
		output     string
		input      string
		designName string
		backend    string
		want       string
	}{
		{
			name:    "explicit output wins",
			output:  "out.py",
			input:   "transmon.toml",
			backend: pipeline.BackendScript,
			want:    "out.py",
		},
		{
			name:    "derived from input file",
			input:   "designs/transmon.toml",
			backend: pipeline.BackendScript,
			want:    "designs/transmon.py",
		},
		{
			name:    "ops backend uses json",
			input:   "transmon.toml",
			backend: pipeline.BackendOps,
			want:    "transmon.json",
		},
		{
			name:       "stored design uses its name",
			designName: "cavity",
			backend:    pipeline.BackendScript,
			want:       "cavity.py",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPath(tt.output, tt.input, tt.designName, tt.backend)
			if got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
