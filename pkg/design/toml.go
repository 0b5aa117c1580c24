package design

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/qweave/metalize/pkg/errors"
	"github.com/qweave/metalize/pkg/geometry"
	"github.com/qweave/metalize/pkg/units"
)

// The TOML design-file format. Lengths appear as unit strings ("50um") so
// files read naturally; coordinates are raw numbers in mm.
//
//	name = "transmon"
//	precision = 9
//
//	[chips.main]
//	material = "silicon"
//	center = ["0mm", "0mm", "0mm"]
//	size = ["9mm", "6mm", "-750um"]
//	sample_holder_top = "1.2mm"
//	sample_holder_bottom = "1.2mm"
//
//	[[elements]]
//	component = 1
//	name = "pad"
//	kind = "poly"
//	chip = "main"
//	fillet = "50um"
//	subtract = false
//	exterior = [[-0.2, -0.1], [0.2, -0.1], [0.2, 0.1], [-0.2, 0.1]]

type designFile struct {
	Name      string              `toml:"name"`
	Precision int                 `toml:"precision"`
	Chips     map[string]chipFile `toml:"chips"`
	Elements  []elementFile       `toml:"elements"`
}

type chipFile struct {
	Material           string   `toml:"material"`
	Center             []string `toml:"center"`
	Size               []string `toml:"size"`
	SampleHolderTop    string   `toml:"sample_holder_top"`
	SampleHolderBottom string   `toml:"sample_holder_bottom"`
}

type elementFile struct {
	Component int           `toml:"component"`
	Name      string        `toml:"name"`
	Kind      string        `toml:"kind"`
	Chip      string        `toml:"chip"`
	Fillet    string        `toml:"fillet"`
	Width     string        `toml:"width"`
	Subtract  bool          `toml:"subtract"`
	Helper    bool          `toml:"helper"`
	Exterior  [][]float64   `toml:"exterior"`
	Interiors [][][]float64 `toml:"interiors"`
	Points    [][]float64   `toml:"points"`
	Junction  *junctionFile `toml:"junction"`
}

type junctionFile struct {
	Inductance  *float64 `toml:"inductance"`
	Capacitance float64  `toml:"capacitance"`
	Resistance  float64  `toml:"resistance"`
	MeshMax     string   `toml:"mesh_max"`
}

// Read decodes a TOML design from r.
// The returned design is validated.
func Read(r io.Reader) (*Design, error) {
	var raw designFile
	if _, err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode design")
	}
	return fromFile(&raw)
}

// Load reads a TOML design from a file on disk.
func Load(path string) (*Design, error) {
	if err := errors.ValidateDesignPath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open design %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open design %s", path)
	}
	defer f.Close()
	return Read(f)
}

// Marshal encodes the design back into its TOML file form.
// Lengths are written as plain mm numbers with an "mm" suffix.
func Marshal(d *Design) ([]byte, error) {
	raw := designFile{
		Name:      d.Name,
		Precision: d.Precision,
		Chips:     make(map[string]chipFile, len(d.Chips)),
	}
	for name, c := range d.Chips {
		raw.Chips[name] = chipFile{
			Material:           c.Material,
			Center:             []string{mm(c.Center.X), mm(c.Center.Y), mm(c.Center.Z)},
			Size:               []string{mm(c.Size.X), mm(c.Size.Y), mm(c.Size.Z)},
			SampleHolderTop:    mm(c.SampleHolderTop),
			SampleHolderBottom: mm(c.SampleHolderBottom),
		}
	}
	for _, e := range d.Elements {
		ef := elementFile{
			Component: e.Component,
			Name:      e.Name,
			Kind:      string(e.Kind),
			Chip:      e.Chip,
			Subtract:  e.Subtract,
			Helper:    e.Helper,
			Exterior:  toPairs(e.Exterior),
			Points:    toPairs(e.Points),
		}
		if e.Fillet > 0 {
			ef.Fillet = mm(e.Fillet)
		}
		if e.Width > 0 {
			ef.Width = mm(e.Width)
		}
		for _, ring := range e.Interiors {
			ef.Interiors = append(ef.Interiors, toPairs(ring))
		}
		if e.Junction != nil {
			ind := e.Junction.Inductance
			ef.Junction = &junctionFile{
				Inductance:  &ind,
				Capacitance: e.Junction.Capacitance,
				Resistance:  e.Junction.Resistance,
				MeshMax:     mm(e.Junction.MeshMax),
			}
		}
		raw.Elements = append(raw.Elements, ef)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode design")
	}
	return buf.Bytes(), nil
}

// Save writes the design as TOML to path.
func Save(d *Design, path string) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func fromFile(raw *designFile) (*Design, error) {
	d := &Design{
		Name:      raw.Name,
		Precision: raw.Precision,
		Chips:     make(map[string]Chip, len(raw.Chips)),
	}
	if d.Precision == 0 {
		d.Precision = geometry.DefaultPrecision
	}

	for name, cf := range raw.Chips {
		chip, err := chipFromFile(cf)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDesign, err, "chip %q", name)
		}
		d.Chips[name] = chip
	}

	for i, ef := range raw.Elements {
		e, err := elementFromFile(ef)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDesign, err, "element %d (%s)", i, ef.Name)
		}
		d.Elements = append(d.Elements, e)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func chipFromFile(cf chipFile) (Chip, error) {
	c := Chip{Material: cf.Material}

	center, err := parseVec3(cf.Center, "center")
	if err != nil {
		return c, err
	}
	c.Center = center

	size, err := parseVec3(cf.Size, "size")
	if err != nil {
		return c, err
	}
	c.Size = size

	if cf.SampleHolderTop != "" {
		if c.SampleHolderTop, err = units.Parse(cf.SampleHolderTop); err != nil {
			return c, err
		}
	}
	if cf.SampleHolderBottom != "" {
		if c.SampleHolderBottom, err = units.Parse(cf.SampleHolderBottom); err != nil {
			return c, err
		}
	}
	return c, nil
}

func elementFromFile(ef elementFile) (Element, error) {
	e := Element{
		Component: ef.Component,
		Name:      ef.Name,
		Kind:      ElementKind(ef.Kind),
		Chip:      ef.Chip,
		Subtract:  ef.Subtract,
		Helper:    ef.Helper,
		Exterior:  fromPairs(ef.Exterior),
		Points:    fromPairs(ef.Points),
	}

	var err error
	if ef.Fillet != "" {
		if e.Fillet, err = units.Parse(ef.Fillet); err != nil {
			return e, err
		}
	}
	if ef.Width != "" {
		if e.Width, err = units.Parse(ef.Width); err != nil {
			return e, err
		}
	}

	for _, ring := range ef.Interiors {
		e.Interiors = append(e.Interiors, fromPairs(ring))
	}

	if e.Kind == KindJunction {
		j := Junction{Inductance: DefaultInductance, MeshMax: DefaultMeshMax}
		if jf := ef.Junction; jf != nil {
			if jf.Inductance != nil {
				j.Inductance = *jf.Inductance
			}
			j.Capacitance = jf.Capacitance
			j.Resistance = jf.Resistance
			if jf.MeshMax != "" {
				if j.MeshMax, err = units.Parse(jf.MeshMax); err != nil {
					return e, err
				}
			}
		}
		e.Junction = &j
	}

	return e, nil
}

func parseVec3(parts []string, field string) (geometry.Vec3, error) {
	var v geometry.Vec3
	if len(parts) != 3 {
		return v, errors.New(errors.ErrCodeInvalidDesign, "%s needs 3 components, got %d", field, len(parts))
	}
	var err error
	if v.X, err = units.Parse(parts[0]); err != nil {
		return v, err
	}
	if v.Y, err = units.Parse(parts[1]); err != nil {
		return v, err
	}
	if v.Z, err = units.Parse(parts[2]); err != nil {
		return v, err
	}
	return v, nil
}

func toPairs(pts []geometry.Point) [][]float64 {
	if pts == nil {
		return nil
	}
	out := make([][]float64, len(pts))
	for i, p := range pts {
		out[i] = []float64{p.X, p.Y}
	}
	return out
}

func fromPairs(pairs [][]float64) []geometry.Point {
	if pairs == nil {
		return nil
	}
	out := make([]geometry.Point, len(pairs))
	for i, pair := range pairs {
		p := geometry.Point{}
		if len(pair) > 0 {
			p.X = pair[0]
		}
		if len(pair) > 1 {
			p.Y = pair[1]
		}
		out[i] = p
	}
	return out
}

func mm(v float64) string {
	return fmt.Sprintf("%gmm", v)
}
