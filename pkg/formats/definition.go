// Definition XML reader for block definitions (data/definitions/*.xml).

package formats

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"

	"github.com/Faultbox/blockview/pkg/encoding"
)

// Definition format errors.
var (
	ErrNotDefinition = errors.New("root element is not <definition>")
)

// DefinitionPosition is an integer voxel coordinate.
type DefinitionPosition struct {
	X int32 `xml:"x,attr"`
	Y int32 `xml:"y,attr"`
	Z int32 `xml:"z,attr"`
}

// DefinitionSurface is one decorative surface decal or buoyancy surface.
// Missing attributes decode to nil.
type DefinitionSurface struct {
	Orientation      *int32               `xml:"orientation,attr"`
	Rotation         *int32               `xml:"rotation,attr"`
	Shape            *int32               `xml:"shape,attr"`
	TransType        *int32               `xml:"trans_type,attr"`
	Flags            *uint64              `xml:"flags,attr"`
	IsReverseNormals *bool                `xml:"is_reverse_normals,attr"`
	IsTwoSided       *bool                `xml:"is_two_sided,attr"`
	Positions        []DefinitionPosition `xml:"position"`
}

// OrientationOr returns the orientation, or def when unset.
func (s *DefinitionSurface) OrientationOr(def int32) int32 { return valueOr(s.Orientation, def) }

// RotationOr returns the rotation, or def when unset.
func (s *DefinitionSurface) RotationOr(def int32) int32 { return valueOr(s.Rotation, def) }

// ShapeOr returns the shape id, or def when unset.
func (s *DefinitionSurface) ShapeOr(def int32) int32 { return valueOr(s.Shape, def) }

// LastPosition returns the last position element. Only the last one places
// the surface.
func (s *DefinitionSurface) LastPosition() (DefinitionPosition, bool) {
	if len(s.Positions) == 0 {
		return DefinitionPosition{}, false
	}
	return s.Positions[len(s.Positions)-1], true
}

type SurfaceList struct {
	Surfaces []DefinitionSurface `xml:"surface"`
}

// Definition is the subset of a block definition the viewer consumes.
type Definition struct {
	XMLName  xml.Name `xml:"definition"`
	Name     *string  `xml:"name,attr"`
	Category *int32   `xml:"category,attr"`
	Type     *int32   `xml:"type,attr"`
	Mass     *float32 `xml:"mass,attr"`
	Value    *float32 `xml:"value,attr"`
	Flags    *uint64  `xml:"flags,attr"`
	Tags     *string  `xml:"tags,attr"`

	MeshDataName       *string `xml:"mesh_data_name,attr"`
	Mesh0Name          *string `xml:"mesh_0_name,attr"`
	Mesh1Name          *string `xml:"mesh_1_name,attr"`
	Mesh2Name          *string `xml:"mesh_2_name,attr"`
	MeshEditorOnlyName *string `xml:"mesh_editor_only_name,attr"`

	SurfaceLists  []SurfaceList        `xml:"surfaces"`
	BuoyancyLists []SurfaceList        `xml:"buoyancy_surfaces"`
	VoxelMin      []DefinitionPosition `xml:"voxel_min"`
	VoxelMax      []DefinitionPosition `xml:"voxel_max"`
}

// Surfaces returns every <surface> under every <surfaces> element.
func (d *Definition) Surfaces() []DefinitionSurface {
	return flatten(d.SurfaceLists)
}

// BuoyancySurfaces returns every <surface> under <buoyancy_surfaces>.
func (d *Definition) BuoyancySurfaces() []DefinitionSurface {
	return flatten(d.BuoyancyLists)
}

// DisplayName returns the definition name, or "" when unset.
func (d *Definition) DisplayName() string {
	if d.Name == nil {
		return ""
	}
	return *d.Name
}

// VoxelBounds returns the last voxel_min/voxel_max pair.
func (d *Definition) VoxelBounds() (lo, hi DefinitionPosition, ok bool) {
	if len(d.VoxelMin) == 0 || len(d.VoxelMax) == 0 {
		return lo, hi, false
	}
	return d.VoxelMin[len(d.VoxelMin)-1], d.VoxelMax[len(d.VoxelMax)-1], true
}

// ParseDefinitionFile reads and parses a definition file from disk.
func ParseDefinitionFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definition file: %w", err)
	}
	return ParseDefinition(data)
}

// ParseDefinition parses definition XML. Unknown elements and attributes are
// ignored.
func ParseDefinition(data []byte) (*Definition, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = encoding.CharsetReader
	dec.Strict = false

	var def Definition
	if err := dec.Decode(&def); err != nil {
		var unexpected xml.UnmarshalError
		if errors.As(err, &unexpected) {
			return nil, fmt.Errorf("%w: %v", ErrNotDefinition, err)
		}
		return nil, fmt.Errorf("parsing definition: %w", err)
	}
	return &def, nil
}

func flatten(lists []SurfaceList) []DefinitionSurface {
	var out []DefinitionSurface
	for _, l := range lists {
		out = append(out, l.Surfaces...)
	}
	return out
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
