package raster

import (
	"errors"
	"testing"

	"github.com/Faultbox/blockview/internal/engine/geometry"
	"github.com/Faultbox/blockview/internal/engine/scene"
	"github.com/Faultbox/blockview/pkg/math"
)

// ndcView draws world coordinates straight into clip space.
type ndcView struct{}

func (ndcView) ViewProj() math.Mat4  { return math.Identity() }
func (ndcView) Position() math.Vec3 { return math.Vec3{Z: 5} }

func v3(x, y, z float32) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }

// triangle returns a one-triangle mesh, clockwise on screen unless reversed.
func triangle(z float32, c geometry.Color4, reversed bool) *geometry.Mesh {
	vs := []geometry.Vertex{
		{Position: v3(-0.5, -0.5, z), Color: c, Normal: v3(0, 0, 1)},
		{Position: v3(0, 0.5, z), Color: c, Normal: v3(0, 0, 1)},
		{Position: v3(0.5, -0.5, z), Color: c, Normal: v3(0, 0, 1)},
	}
	tri := geometry.Triangle{0, 1, 2}
	if reversed {
		tri = geometry.Triangle{0, 2, 1}
	}
	return geometry.NewMesh(vs, []geometry.Triangle{tri})
}

func render(t *testing.T, dev *Device, objs ...*scene.Object) {
	t.Helper()
	settings := scene.DefaultSettings()
	settings.Preview = false

	r, err := scene.NewRenderer(dev, settings)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	defer r.Destroy()

	if err := r.Update(scene.Snapshot(objs)); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	r.Paint(ndcView{})
}

func near8(a, b uint8) bool {
	d := int(a) - int(b)
	return d >= -1 && d <= 1
}

func TestDevice_OpaqueTriangle(t *testing.T) {
	dev := NewDevice(32, 32)
	render(t, dev, scene.NewObject(triangle(0, geometry.Red, false)))

	img := dev.Image()
	c := img.NRGBAAt(16, 16)
	// light = dot((0,0,1), -(0.5,-1,0.2))*0.4 + 0.7 = 0.62
	if !near8(c.R, 158) || c.G != 0 || c.B != 0 || c.A != 255 {
		t.Errorf("center pixel = %v, want ~(158, 0, 0, 255)", c)
	}
	if corner := img.NRGBAAt(0, 0); corner.A != 0 {
		t.Errorf("corner pixel = %v, want background", corner)
	}
	if s := dev.Stats(); s.DrawCalls != 1 || s.Triangles != 1 || s.Fragments == 0 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestDevice_CullBack(t *testing.T) {
	tests := []struct {
		name     string
		reversed bool
		cull     bool
		drawn    bool
	}{
		{"front", false, true, true},
		{"back culled", true, true, false},
		{"back without culling", true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := NewDevice(32, 32)
			dev.CullBack = tt.cull
			render(t, dev, scene.NewObject(triangle(0, geometry.Red, tt.reversed)))

			drawn := dev.Image().NRGBAAt(16, 16).A != 0
			if drawn != tt.drawn {
				t.Errorf("drawn = %v, want %v", drawn, tt.drawn)
			}
		})
	}
}

func TestDevice_DepthTest(t *testing.T) {
	dev := NewDevice(32, 32)
	// Green is nearer (smaller NDC depth) but drawn first.
	render(t, dev,
		scene.NewObject(triangle(-0.5, geometry.Green, false)),
		scene.NewObject(triangle(0.5, geometry.Red, false)),
	)

	c := dev.Image().NRGBAAt(16, 16)
	if c.R != 0 || c.G == 0 {
		t.Errorf("center pixel = %v, want the nearer green triangle", c)
	}
}

func TestDevice_GlassBlends(t *testing.T) {
	dev := NewDevice(32, 32)
	glass := triangle(0, geometry.RGBA(0, 0, 1, 0.5), false).Glass()
	render(t, dev,
		scene.NewObject(glass),
		scene.NewObject(triangle(0.5, geometry.Red, false)),
	)

	c := dev.Image().NRGBAAt(16, 16)
	if c.R == 0 || c.B == 0 {
		t.Errorf("center pixel = %v, want red and blue mixed", c)
	}
	if c.R >= 158 {
		t.Errorf("red not attenuated by glass: %v", c)
	}
}

func TestDevice_Line(t *testing.T) {
	dev := NewDevice(32, 32)
	line := geometry.NewLine([]geometry.LineVertex{
		{Position: v3(-0.9, 0, 0), Color: geometry.Green},
		{Position: v3(0.9, 0, 0), Color: geometry.Green},
	}, 1)
	render(t, dev, scene.NewObject(line))

	c := dev.Image().NRGBAAt(16, 16)
	if c.R != 0 || c.G != 255 || c.B != 0 || c.A != 255 {
		t.Errorf("pixel on line = %v, want opaque green", c)
	}
	if c := dev.Image().NRGBAAt(16, 4); c.A != 0 {
		t.Errorf("pixel off line = %v, want background", c)
	}
}

func TestDevice_BehindEyeRejected(t *testing.T) {
	dev := NewDevice(16, 16)
	p, _ := dev.CreateProgram(geometry.ShaderBasic)
	vao, err := dev.CreateVertexArray(p, triangle(0, geometry.Red, false).AttributeData())
	if err != nil {
		t.Fatal(err)
	}

	dev.BeginFrame()
	u := scene.FrameUniforms{ViewProj: math.Scale(1, 1, 1)}
	u.ViewProj[15] = -1 // every w negative
	dev.UseProgram(p, u)
	dev.Draw(vao, math.Identity(), geometry.DrawConfig{Shader: geometry.ShaderBasic}, 3)

	if s := dev.Stats(); s.Fragments != 0 || s.Triangles != 0 {
		t.Errorf("Stats() = %+v, want nothing rasterized", s)
	}
}

func TestDevice_CreateVertexArrayErrors(t *testing.T) {
	dev := NewDevice(8, 8)
	line, _ := dev.CreateProgram(geometry.ShaderLine)
	basic, _ := dev.CreateProgram(geometry.ShaderBasic)

	tests := []struct {
		name    string
		program uint32
		data    geometry.AttributeData
		wantErr error
	}{
		{"normals on line program", line, triangle(0, geometry.Red, false).AttributeData(), ErrAttributeNotFound},
		{"short colors", basic, geometry.AttributeData{Positions: make([]float32, 9), Colors: make([]float32, 8)}, ErrBufferSize},
		{"unknown program", 999, geometry.AttributeData{}, ErrUnknownProgram},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dev.CreateVertexArray(tt.program, tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateVertexArray() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGlassShade_RimIsMoreOpaque(t *testing.T) {
	u := &scene.FrameUniforms{
		CameraPosition: v3(0, 0, 10),
		SkyUp:          geometry.White,
		SkyDown:        geometry.White,
	}
	c := geometry.RGBA(0.5, 0.5, 0.5, 0.2)

	facing := glassShade(c, v3(0, 0, 1), v3(0, 0, 0), u)
	grazing := glassShade(c, v3(1, 0, 0), v3(0, 0, 0), u)

	if facing.A > 0.21 {
		t.Errorf("facing alpha = %v, want ~0.2", facing.A)
	}
	if grazing.A <= facing.A {
		t.Errorf("grazing alpha %v not above facing alpha %v", grazing.A, facing.A)
	}
}
