package compute

import (
	"embed"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/san-kum/mbsim/internal/particle"
	"gonum.org/v1/gonum/floats"
)

//go:embed shaders/*.comp
var shaderFS embed.FS

const groupSize = 256

// GLDevice runs the passes as OpenGL 4.3 compute shaders. It must be created
// and used on the goroutine that owns a current GL context. Buffers hold
// float32 vec2s; Fetch widens them back to float64.
type GLDevice struct {
	wall, collide, integrate uint32

	posBuf, velBuf, claimBuf, resolvedBuf uint32

	n    int32
	host []float32
	vel  []float64

	initialized bool
	renderer    string
}

func NewGLDevice() *GLDevice {
	return &GLDevice{}
}

// Init loads GL entry points and compiles the kernels.
func (g *GLDevice) Init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("%w: failed to init opengl: %v", ErrNoDevice, err)
	}

	if err := g.compileKernels(compileKernel, gl.DeleteProgram); err != nil {
		return err
	}

	g.renderer = gl.GoStr(gl.GetString(gl.RENDERER))
	g.initialized = true
	return nil
}

// compileKernels builds the three programs. On failure the programs built so
// far are deleted and the device is left without kernels.
func (g *GLDevice) compileKernels(compile func(string) (uint32, error), deleteProgram func(uint32)) error {
	kernels := []struct {
		path string
		prog *uint32
	}{
		{"shaders/wall.comp", &g.wall},
		{"shaders/collide.comp", &g.collide},
		{"shaders/integrate.comp", &g.integrate},
	}
	for i, k := range kernels {
		prog, err := compile(k.path)
		if err != nil {
			for _, built := range kernels[:i] {
				deleteProgram(*built.prog)
				*built.prog = 0
			}
			return err
		}
		*k.prog = prog
	}
	return nil
}

func (g *GLDevice) Name() string {
	if g.initialized {
		return "gl (" + g.renderer + ")"
	}
	return "gl (not available)"
}

func (g *GLDevice) Available() bool { return g.initialized }

func (g *GLDevice) Load(s *particle.Store) error {
	if !g.initialized {
		return ErrNoDevice
	}
	if s == nil || s.N <= 0 {
		return particle.ErrEmpty
	}

	g.release()
	g.n = int32(s.N)
	g.host = make([]float32, 2*s.N)
	g.vel = make([]float64, 2*s.N)
	size := len(g.host) * 4

	widen(g.host, s.Pos)
	g.posBuf = newSSBO(0, size, g.host)
	widen(g.host, s.Vel)
	g.velBuf = newSSBO(1, size, g.host)
	g.claimBuf = newSSBO(2, s.N*4, nil)
	g.resolvedBuf = newSSBO(3, 4, nil)

	return nil
}

func (g *GLDevice) Wall(radius, bounds float64) {
	gl.UseProgram(g.wall)
	setInt(g.wall, "n", g.n)
	setFloat(g.wall, "radius", radius)
	setFloat(g.wall, "bounds", bounds)
	g.dispatch()
}

func (g *GLDevice) Collide(radius float64) int {
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, g.claimBuf)
	gl.ClearBufferData(gl.SHADER_STORAGE_BUFFER, gl.R32I, gl.RED_INTEGER, gl.INT, nil)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, g.resolvedBuf)
	gl.ClearBufferData(gl.SHADER_STORAGE_BUFFER, gl.R32UI, gl.RED_INTEGER, gl.UNSIGNED_INT, nil)
	gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT)

	gl.UseProgram(g.collide)
	setInt(g.collide, "n", g.n)
	setFloat(g.collide, "radius", radius)
	g.dispatch()

	var resolved uint32
	gl.MemoryBarrier(gl.BUFFER_UPDATE_BARRIER_BIT)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, g.resolvedBuf)
	gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, 4, gl.Ptr(&resolved))
	return int(resolved)
}

func (g *GLDevice) Integrate(dt float64) {
	gl.UseProgram(g.integrate)
	setInt(g.integrate, "n", g.n)
	setFloat(g.integrate, "dt", dt)
	g.dispatch()
}

// SumSq reads the velocity buffer back and reduces it on the host.
func (g *GLDevice) SumSq() float64 {
	g.read(g.velBuf, g.vel)
	return floats.Dot(g.vel, g.vel)
}

func (g *GLDevice) Fetch(dst *particle.Store) error {
	if dst.N != int(g.n) {
		return fmt.Errorf("compute: fetch into store of %d particles, have %d", dst.N, g.n)
	}
	g.read(g.posBuf, dst.Pos)
	g.read(g.velBuf, dst.Vel)
	return nil
}

func (g *GLDevice) Close() {
	g.release()
	for _, p := range []uint32{g.wall, g.collide, g.integrate} {
		if p != 0 {
			gl.DeleteProgram(p)
		}
	}
	g.initialized = false
}

func (g *GLDevice) dispatch() {
	groups := (uint32(g.n) + groupSize - 1) / groupSize
	gl.DispatchCompute(groups, 1, 1)
	gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT)
}

func (g *GLDevice) read(buf uint32, dst []float64) {
	gl.MemoryBarrier(gl.BUFFER_UPDATE_BARRIER_BIT)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, buf)
	gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, len(g.host)*4, gl.Ptr(g.host))
	for i, v := range g.host {
		dst[i] = float64(v)
	}
}

func (g *GLDevice) release() {
	for _, b := range []*uint32{&g.posBuf, &g.velBuf, &g.claimBuf, &g.resolvedBuf} {
		if *b != 0 {
			gl.DeleteBuffers(1, b)
			*b = 0
		}
	}
}

func widen(dst []float32, src []float64) {
	for i, v := range src {
		dst[i] = float32(v)
	}
}

func newSSBO(binding uint32, size int, data []float32) uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, buf)
	if data != nil {
		gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, gl.Ptr(data), gl.DYNAMIC_COPY)
	} else {
		gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, nil, gl.DYNAMIC_COPY)
	}
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, binding, buf)
	return buf
}

func setInt(program uint32, name string, v int32) {
	gl.Uniform1i(gl.GetUniformLocation(program, gl.Str(name+"\x00")), v)
}

func setFloat(program uint32, name string, v float64) {
	gl.Uniform1f(gl.GetUniformLocation(program, gl.Str(name+"\x00")), float32(v))
}

func compileKernel(path string) (uint32, error) {
	source, err := shaderFS.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content := string(source) + "\x00"

	shader := gl.CreateShader(gl.COMPUTE_SHADER)
	csources, free := gl.Strs(content)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile %s: %v", path, log)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, shader)
	gl.LinkProgram(program)

	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	gl.DeleteShader(shader)
	if status == gl.FALSE {
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link %s", path)
	}
	return program, nil
}
