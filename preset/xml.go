// Package preset loads Juno program banks from PROGRAM/PARAM XML files.
package preset

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charlesvestal/move-anything-hera/hera"
)

// MaxPresets caps the bank size.
const MaxPresets = 128

// Preset is one program: a display name plus the full parameter vector
// in engine index order.
type Preset struct {
	Name   string
	Values [hera.NumParameters]float32
}

// Apply pushes every parameter value into the engine.
func (p *Preset) Apply(e *hera.Engine) {
	e.ApplyPreset(p.Values[:])
}

type xmlProgram struct {
	XMLName xml.Name   `xml:"PROGRAM"`
	Name    string     `xml:"name,attr"`
	Params  []xmlParam `xml:"PARAM"`
}

type xmlParam struct {
	ID    string  `xml:"id,attr"`
	Value float32 `xml:"value,attr"`
}

// paramIndexByID maps the stable preset keys back to parameter slots.
var paramIndexByID = func() map[string]hera.Param {
	m := make(map[string]hera.Param, hera.NumParameters)
	for i, id := range hera.ParamIDs {
		m[id] = hera.Param(i)
	}
	return m
}()

// Load reads one program file. Every parameter starts at its engine
// default; PARAM entries override by id, and ids the engine does not
// know are ignored so banks written by newer builds still load.
func Load(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a program from raw XML bytes.
func Parse(data []byte) (*Preset, error) {
	var prog xmlProgram
	if err := xml.Unmarshal(data, &prog); err != nil {
		return nil, fmt.Errorf("preset: %w", err)
	}

	p := &Preset{Name: prog.Name}
	copy(p.Values[:], hera.ParamDefaults[:])
	for _, param := range prog.Params {
		if idx, ok := paramIndexByID[param.ID]; ok {
			p.Values[idx] = param.Value
		}
	}
	return p, nil
}

// Save writes the program as PROGRAM/PARAM XML, every parameter
// listed explicitly in engine index order. Parent directories are
// created as needed.
func Save(path string, p *Preset) error {
	prog := xmlProgram{Name: p.Name}
	prog.Params = make([]xmlParam, hera.NumParameters)
	for i, id := range hera.ParamIDs {
		prog.Params[i] = xmlParam{ID: id, Value: p.Values[i]}
	}

	data, err := xml.MarshalIndent(&prog, "", "  ")
	if err != nil {
		return fmt.Errorf("preset: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadDir loads the bank from dir: Preset000.xml, Preset001.xml, and
// so on in ascending order, stopping at the first missing file. An
// empty directory yields an empty bank, not an error.
func LoadDir(dir string) ([]*Preset, error) {
	var bank []*Preset
	for i := 0; i < MaxPresets; i++ {
		path := filepath.Join(dir, fmt.Sprintf("Preset%03d.xml", i))
		if _, err := os.Stat(path); err != nil {
			break
		}
		p, err := Load(path)
		if err != nil {
			return nil, fmt.Errorf("preset %d: %w", i, err)
		}
		if p.Name == "" {
			p.Name = fmt.Sprintf("Preset %d", i)
		}
		bank = append(bank, p)
	}
	return bank, nil
}
