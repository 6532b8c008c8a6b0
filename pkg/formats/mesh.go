// Binary mesh files: little-endian vertex, triangle and submesh tables.

package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/Faultbox/blockview/pkg/encoding"
)

// Mesh format errors.
var (
	ErrInvalidMeshMagic = errors.New("invalid mesh magic: expected 'mesh' or 'phys'")
	ErrMalformedMesh    = errors.New("malformed mesh")
)

// Layout constants.
const (
	meshVertexSize   = 32 // f32x3 position, u8x4 color, f32x3 normal
	meshTriangleSize = 6  // u16x3
	meshHeaderFields = 5

	// MaterialGlass is the submesh material tag rendered as translucent glass.
	MaterialGlass uint16 = 1
)

// ParseError is a structural violation of the mesh format. Every ParseError
// matches ErrMalformedMesh; a bad magic also matches ErrInvalidMeshMagic.
type ParseError struct {
	Field  string // offending field, e.g. "index_count" or "submesh[2].start"
	Value  any    // offending value
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("mesh: %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedMesh, e.Err}
	}
	return []error{ErrMalformedMesh}
}

// IOError is a failed or short read. Truncated input unwraps to
// io.ErrUnexpectedEOF.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("mesh: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// UTF8Error reports a submesh name that is not valid UTF-8. It never aborts a
// decode; it is stored on the submesh.
type UTF8Error struct {
	Submesh int
	Raw     []byte
}

func (e *UTF8Error) Error() string {
	return fmt.Sprintf("mesh: submesh %d name is not valid UTF-8 (%d bytes)", e.Submesh, len(e.Raw))
}

// MeshKind is the file kind named by the 4-byte magic.
type MeshKind uint8

const (
	MeshKindMesh MeshKind = iota + 1
	MeshKindPhys
)

// String returns the magic for the kind.
func (k MeshKind) String() string {
	switch k {
	case MeshKindMesh:
		return "mesh"
	case MeshKindPhys:
		return "phys"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// MeshVertex is one vertex record. Field order matches the file.
type MeshVertex struct {
	Position [3]float32
	Color    [4]uint8
	Normal   [3]float32
}

// ColorF returns the vertex color normalized to 0..1.
func (v MeshVertex) ColorF() [4]float32 {
	return [4]float32{
		float32(v.Color[0]) / 255,
		float32(v.Color[1]) / 255,
		float32(v.Color[2]) / 255,
		float32(v.Color[3]) / 255,
	}
}

// MeshTriangle holds three indices into MeshFile.Vertices.
type MeshTriangle struct {
	Indices [3]uint16
}

// Submesh is a contiguous, material-tagged slice of the index buffer.
type Submesh struct {
	Start     uint32 // first index, multiple of 3
	Length    uint32 // index count, multiple of 3
	Reserved0 uint16
	Material  uint16
	BoundsMin [3]float32
	BoundsMax [3]float32
	Reserved1 uint16
	Name      string // empty when NameErr is set
	NameBytes []byte
	NameErr   error // *UTF8Error when the name is not valid UTF-8
	Trailer   [3]float32
}

// IsGlass reports whether the submesh uses the translucent glass material.
func (s *Submesh) IsGlass() bool {
	return s.Material == MaterialGlass
}

// TriangleRange returns the half-open triangle range [first, end).
func (s *Submesh) TriangleRange() (first, end int) {
	first = int(s.Start / 3)
	return first, first + int(s.Length/3)
}

// DisplayName returns the name. Names that are not UTF-8 are shown decoded
// as Windows-1252.
func (s *Submesh) DisplayName() string {
	if s.NameErr != nil {
		return encoding.Windows1252ToUTF8(s.NameBytes)
	}
	return s.Name
}

// MeshFile is a decoded mesh file.
type MeshFile struct {
	Kind       MeshKind
	Header     [meshHeaderFields]uint16 // Header[2] is the vertex count
	Vertices   []MeshVertex
	IndexCount uint32
	Triangles  []MeshTriangle
	Submeshes  []Submesh
}

// TriangleCount returns IndexCount / 3.
func (m *MeshFile) TriangleCount() int {
	return len(m.Triangles)
}

// Bounds returns the axis-aligned bounds of all vertex positions in file
// coordinates. ok is false for a mesh without vertices.
func (m *MeshFile) Bounds() (lo, hi [3]float32, ok bool) {
	if len(m.Vertices) == 0 {
		return lo, hi, false
	}
	lo, hi = m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], v.Position[i])
			hi[i] = max(hi[i], v.Position[i])
		}
	}
	return lo, hi, true
}

// ParseMeshFile reads and decodes a mesh file from disk.
func ParseMeshFile(path string) (*MeshFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read file", Err: err}
	}
	return ParseMesh(data)
}

// ParseMesh decodes a mesh from a byte slice. Any violation aborts the decode;
// there is no partial result.
func ParseMesh(data []byte) (*MeshFile, error) {
	r := bytes.NewReader(data)
	m := &MeshFile{}

	var magic [4]byte
	if err := read(r, "magic", &magic); err != nil {
		return nil, err
	}
	switch string(magic[:]) {
	case "mesh":
		m.Kind = MeshKindMesh
	case "phys":
		m.Kind = MeshKindPhys
	default:
		return nil, &ParseError{Field: "magic", Value: fmt.Sprintf("%q", magic[:]),
			Reason: "unexpected magic", Err: ErrInvalidMeshMagic}
	}

	if err := read(r, "header", &m.Header); err != nil {
		return nil, err
	}

	vertexCount := int(m.Header[2])
	if err := need(r, "vertices", vertexCount*meshVertexSize); err != nil {
		return nil, err
	}
	m.Vertices = make([]MeshVertex, vertexCount)
	if err := read(r, "vertices", m.Vertices); err != nil {
		return nil, err
	}

	if err := read(r, "index_count", &m.IndexCount); err != nil {
		return nil, err
	}
	if m.IndexCount%3 != 0 {
		return nil, &ParseError{Field: "index_count", Value: m.IndexCount, Reason: "not a multiple of 3"}
	}

	triangleCount := int(m.IndexCount / 3)
	if err := need(r, "triangles", triangleCount*meshTriangleSize); err != nil {
		return nil, err
	}
	m.Triangles = make([]MeshTriangle, triangleCount)
	if err := read(r, "triangles", m.Triangles); err != nil {
		return nil, err
	}
	for i, tri := range m.Triangles {
		for _, idx := range tri.Indices {
			if int(idx) >= vertexCount {
				return nil, &ParseError{
					Field:  fmt.Sprintf("triangle[%d].index", i),
					Value:  idx,
					Reason: fmt.Sprintf("out of range for %d vertices", vertexCount),
				}
			}
		}
	}

	var submeshCount uint16
	if err := read(r, "submesh_count", &submeshCount); err != nil {
		return nil, err
	}
	m.Submeshes = make([]Submesh, submeshCount)
	for i := range m.Submeshes {
		if err := parseSubmesh(r, i, m.IndexCount, &m.Submeshes[i]); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// parseSubmesh reads one submesh record and validates its index range
// against indexCount.
func parseSubmesh(r *bytes.Reader, i int, indexCount uint32, s *Submesh) error {
	field := func(name string) string { return fmt.Sprintf("submesh[%d].%s", i, name) }

	if err := read(r, field("start"), &s.Start); err != nil {
		return err
	}
	if s.Start%3 != 0 || s.Start >= indexCount {
		return &ParseError{Field: field("start"), Value: s.Start,
			Reason: fmt.Sprintf("must be a multiple of 3 below index_count=%d", indexCount)}
	}

	if err := read(r, field("length"), &s.Length); err != nil {
		return err
	}
	if s.Length%3 != 0 || uint64(s.Start)+uint64(s.Length) > uint64(indexCount) {
		return &ParseError{Field: field("length"), Value: s.Length,
			Reason: fmt.Sprintf("must be a multiple of 3 with start+length <= index_count=%d", indexCount)}
	}

	var fixed struct {
		Reserved0 uint16
		Material  uint16
		BoundsMin [3]float32
		BoundsMax [3]float32
		Reserved1 uint16
		NameLen   uint16
	}
	if err := read(r, field("header"), &fixed); err != nil {
		return err
	}
	s.Reserved0 = fixed.Reserved0
	s.Material = fixed.Material
	s.BoundsMin = fixed.BoundsMin
	s.BoundsMax = fixed.BoundsMax
	s.Reserved1 = fixed.Reserved1

	s.NameBytes = make([]byte, fixed.NameLen)
	if err := read(r, field("name"), s.NameBytes); err != nil {
		return err
	}
	if utf8.Valid(s.NameBytes) {
		s.Name = string(s.NameBytes)
	} else {
		s.NameErr = &UTF8Error{Submesh: i, Raw: s.NameBytes}
	}

	return read(r, field("trailer"), &s.Trailer)
}

// read decodes one little-endian value. Running out of input is always
// reported as io.ErrUnexpectedEOF.
func read(r *bytes.Reader, op string, v any) error {
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return &IOError{Op: "read " + op, Err: err}
	}
	return nil
}

// need checks that n bytes remain before a count-driven allocation.
func need(r *bytes.Reader, op string, n int) error {
	if r.Len() < n {
		return &IOError{Op: "read " + op, Err: io.ErrUnexpectedEOF}
	}
	return nil
}
