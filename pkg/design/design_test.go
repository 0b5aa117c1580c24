package design

import (
	"testing"

	"github.com/qweave/metalize/pkg/geometry"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"pad", "pad"},
		{"cpw line 1", "cpwline1"},
		{"2nd_pad", "nd_pad"},
		{"_helper", "_helper"},
		{"läuncher", "luncher"},
		{"12-34", ""},
	}
	for _, tt := range tests {
		if got := CleanName(tt.in); got != tt.want {
			t.Errorf("CleanName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestObjectName(t *testing.T) {
	e := Element{Component: 3, Name: "cpw line"}
	if got := e.ObjectName(); got != "Q3_cpwline" {
		t.Errorf("ObjectName = %q, want Q3_cpwline", got)
	}
}

func testDesign() *Design {
	return &Design{
		Name:      "unit",
		Precision: geometry.DefaultPrecision,
		Chips: map[string]Chip{
			"main": {
				Material:           "silicon",
				Size:               geometry.Vec3{X: 9, Y: 6, Z: -0.75},
				SampleHolderTop:    1.2,
				SampleHolderBottom: 1.2,
			},
		},
		Elements: []Element{
			{
				Component: 1, Name: "pad", Kind: KindPoly, Chip: "main",
				Exterior: []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
			},
			{
				Component: 1, Name: "feed", Kind: KindPath, Chip: "main", Width: 0.01,
				Points: []geometry.Point{{X: 0, Y: 0}, {X: 2, Y: 0}},
			},
		},
	}
}

func TestValidateOK(t *testing.T) {
	if err := testDesign().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	breakages := []struct {
		name  string
		mutate func(*Design)
	}{
		{"empty name", func(d *Design) { d.Name = "" }},
		{"no chips", func(d *Design) { d.Chips = nil }},
		{"unknown chip", func(d *Design) { d.Elements[0].Chip = "aux" }},
		{"short exterior", func(d *Design) { d.Elements[0].Exterior = d.Elements[0].Exterior[:2] }},
		{"short path", func(d *Design) { d.Elements[1].Points = d.Elements[1].Points[:1] }},
		{"negative fillet", func(d *Design) { d.Elements[1].Fillet = -1 }},
		{"negative width", func(d *Design) { d.Elements[1].Width = -1 }},
		{"unknown kind", func(d *Design) { d.Elements[0].Kind = "blob" }},
		{"unusable element name", func(d *Design) { d.Elements[0].Name = "123" }},
	}

	for _, b := range breakages {
		d := testDesign()
		b.mutate(d)
		if err := d.Validate(); err == nil {
			t.Errorf("%s: Validate = nil, want error", b.name)
		}
	}
}

func TestValidateJunctionConstraints(t *testing.T) {
	d := testDesign()
	d.Elements = append(d.Elements, Element{
		Component: 2, Name: "jj", Kind: KindJunction, Chip: "main",
		Points:   []geometry.Point{{X: 0, Y: 0}, {X: 0.007, Y: 0}},
		Junction: &Junction{Inductance: 10, Capacitance: 1},
	})
	if err := d.Validate(); err == nil {
		t.Error("nonzero junction capacitance should fail validation")
	}

	d.Elements[len(d.Elements)-1].Junction = &Junction{Inductance: 10, Resistance: 0.5}
	if err := d.Validate(); err == nil {
		t.Error("nonzero junction resistance should fail validation")
	}

	d.Elements[len(d.Elements)-1].Junction = &Junction{Inductance: 10, MeshMax: DefaultMeshMax}
	if err := d.Validate(); err != nil {
		t.Errorf("clean junction should validate, got %v", err)
	}
}

func TestTableAndComponents(t *testing.T) {
	d := testDesign()
	if got := len(d.Table(KindPoly)); got != 1 {
		t.Errorf("Table(poly) = %d rows, want 1", got)
	}
	if got := len(d.Table(KindJunction)); got != 0 {
		t.Errorf("Table(junction) = %d rows, want 0", got)
	}
	if got := d.Components(); len(got) != 1 || got[0] != 1 {
		t.Errorf("Components = %v, want [1]", got)
	}
}
