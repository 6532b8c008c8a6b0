// Package shader compiles the viewer's GLSL programs and looks up their
// attribute and uniform locations.
package shader

import (
	"embed"
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/blockview/internal/engine/geometry"
)

// Version is prepended to every embedded source.
const Version = "#version 410 core\n"

//go:embed glsl/*.vert glsl/*.frag
var sources embed.FS

// ErrAttribNotFound is returned when a program has no active attribute of
// the requested name.
var ErrAttribNotFound = errors.New("attribute location not found")

// Sources returns the vertex and fragment source of a shader kind, with the
// version line prepended.
func Sources(s geometry.Shader) (vertex, fragment string, err error) {
	name := s.String()
	vert, err := sources.ReadFile("glsl/" + name + ".vert")
	if err != nil {
		return "", "", fmt.Errorf("%s vertex source: %w", name, err)
	}
	frag, err := sources.ReadFile("glsl/" + name + ".frag")
	if err != nil {
		return "", "", fmt.Errorf("%s fragment source: %w", name, err)
	}
	return Version + string(vert), Version + string(frag), nil
}

// Program compiles and links the program for a shader kind.
func Program(s geometry.Shader) (uint32, error) {
	vert, frag, err := Sources(s)
	if err != nil {
		return 0, err
	}
	program, err := CompileProgram(vert, frag)
	if err != nil {
		return 0, fmt.Errorf("%s program: %w", s, err)
	}
	return program, nil
}

// CompileProgram compiles vertex and fragment shaders and links them into a program.
// Returns the program ID or an error if compilation/linking fails.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		log := infoLog(program, gl.GetProgramiv, gl.GetProgramInfoLog)
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", log)
	}

	gl.DetachShader(program, vertShader)
	gl.DetachShader(program, fragShader)
	return program, nil
}

// compileShader compiles a single shader of the given type.
func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		log := infoLog(shader, gl.GetShaderiv, gl.GetShaderInfoLog)
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, log)
	}

	return shader, nil
}

func infoLog(
	object uint32,
	getiv func(uint32, uint32, *int32),
	getLog func(uint32, int32, *int32, *uint8),
) string {
	var logLen int32
	getiv(object, gl.INFO_LOG_LENGTH, &logLen)
	if logLen <= 0 {
		return "(no log)"
	}
	log := make([]byte, logLen)
	getLog(object, logLen, nil, &log[0])
	return string(log[:logLen-1])
}

// GetUniform returns the uniform location for the given name, or -1 when the
// program does not use it. Setting location -1 is a no-op in GL.
func GetUniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

// AttribLocation returns the location of an active vertex attribute.
func AttribLocation(program uint32, name string) (uint32, error) {
	loc := gl.GetAttribLocation(program, gl.Str(name+"\x00"))
	if loc < 0 {
		return 0, fmt.Errorf("%w: %q in program %d", ErrAttribNotFound, name, program)
	}
	return uint32(loc), nil
}
