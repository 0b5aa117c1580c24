package preview

import (
	"strings"
	"testing"

	"github.com/qweave/metalize/pkg/design"
	"github.com/qweave/metalize/pkg/geometry"
)

func previewDesign() *design.Design {
	return &design.Design{
		Name:      "transmon",
		Precision: 9,
		Chips: map[string]design.Chip{
			"main": {Material: "silicon", Size: geometry.Vec3{X: 9, Y: 6, Z: -0.75}},
		},
		Elements: []design.Element{
			{
				Component: 1, Name: "pad", Kind: design.KindPoly, Chip: "main",
				Exterior: []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}},
			},
			{
				Component: 1, Name: "cut", Kind: design.KindPoly, Chip: "main", Subtract: true,
				Exterior: []geometry.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}},
			},
			{
				Component: 2, Name: "jj", Kind: design.KindJunction, Chip: "main",
				Points: []geometry.Point{{X: 0, Y: 0}, {X: 0.1, Y: 0}},
			},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(previewDesign())

	for _, want := range []string{
		`"chip:main"`,
		"silicon 9x6 mm",
		`subgraph "cluster_Q1"`,
		`subgraph "cluster_Q2"`,
		`"Q1_pad"`,
		`"Q2_jj"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s:\n%s", want, dot)
		}
	}

	if !strings.Contains(dot, `"Q1_cut" -> "chip:main" [style=dashed, label="subtract"]`) {
		t.Errorf("subtract shape should point at its chip with a dashed edge:\n%s", dot)
	}
	if !strings.Contains(dot, `"Q1_pad" -> "chip:main";`) {
		t.Errorf("metal shape should point at its chip:\n%s", dot)
	}
}

func TestToDOTDeterministic(t *testing.T) {
	d := previewDesign()
	if ToDOT(d) != ToDOT(d) {
		t.Error("ToDOT should be deterministic")
	}
}
