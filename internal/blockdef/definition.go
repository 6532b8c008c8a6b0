// Package blockdef turns block definition files into scene objects: the
// definition catalog of a ROM directory, the mesh slots a definition names,
// and the decorative surface decals.
package blockdef

import (
	"fmt"
	"path/filepath"

	"github.com/Faultbox/blockview/pkg/formats"
)

// MeshSlot names one of the mesh attributes of a definition.
type MeshSlot int

const (
	MeshData MeshSlot = iota
	Mesh0
	Mesh1
	Mesh2
	MeshEditorOnly
)

// MeshSlots lists every slot in draw order.
var MeshSlots = []MeshSlot{MeshData, Mesh0, Mesh1, Mesh2, MeshEditorOnly}

// String returns the XML attribute name of the slot.
func (s MeshSlot) String() string {
	switch s {
	case MeshData:
		return "mesh_data_name"
	case Mesh0:
		return "mesh_0_name"
	case Mesh1:
		return "mesh_1_name"
	case Mesh2:
		return "mesh_2_name"
	case MeshEditorOnly:
		return "mesh_editor_only_name"
	default:
		return fmt.Sprintf("MeshSlot(%d)", int(s))
	}
}

// MeshName returns the mesh file named by a slot, or "" when the slot is
// unset or empty.
func MeshName(def *formats.Definition, slot MeshSlot) string {
	var p *string
	switch slot {
	case MeshData:
		p = def.MeshDataName
	case Mesh0:
		p = def.Mesh0Name
	case Mesh1:
		p = def.Mesh1Name
	case Mesh2:
		p = def.Mesh2Name
	case MeshEditorOnly:
		p = def.MeshEditorOnlyName
	}
	if p == nil {
		return ""
	}
	return *p
}

// Definition is a definition file in a catalog. The XML is parsed on first
// access and the result, success or failure, is kept until Invalidate.
type Definition struct {
	Path     string
	Filename string

	parsed *formats.Definition
	err    error
	done   bool
}

// NewDefinition creates an unparsed definition for path.
func NewDefinition(path string) *Definition {
	return &Definition{Path: path, Filename: filepath.Base(path)}
}

// Parsed returns the parsed definition.
func (d *Definition) Parsed() (*formats.Definition, error) {
	if !d.done {
		d.parsed, d.err = formats.ParseDefinitionFile(d.Path)
		d.done = true
	}
	return d.parsed, d.err
}

// Invalidate drops the parsed result so the next access re-reads the file.
func (d *Definition) Invalidate() {
	d.parsed, d.err, d.done = nil, nil, false
}

// Title returns the definition's name attribute, or the file name when the
// file has no name or does not parse.
func (d *Definition) Title() string {
	if def, err := d.Parsed(); err == nil && def.DisplayName() != "" {
		return def.DisplayName()
	}
	return d.Filename
}
