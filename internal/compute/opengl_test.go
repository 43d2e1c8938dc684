package compute

import (
	"errors"
	"testing"
)

func TestGLDeviceCompileKernelsReleasesOnFailure(t *testing.T) {
	errCompile := errors.New("compile failed")
	next := uint32(0)
	compile := func(path string) (uint32, error) {
		if path == "shaders/integrate.comp" {
			return 0, errCompile
		}
		next++
		return next, nil
	}
	var deleted []uint32
	release := func(p uint32) { deleted = append(deleted, p) }

	g := &GLDevice{}
	if err := g.compileKernels(compile, release); !errors.Is(err, errCompile) {
		t.Fatalf("compileKernels error = %v, want %v", err, errCompile)
	}
	if len(deleted) != 2 || deleted[0] != 1 || deleted[1] != 2 {
		t.Errorf("deleted programs = %v, want [1 2]", deleted)
	}
	if g.wall != 0 || g.collide != 0 || g.integrate != 0 {
		t.Errorf("programs left set: wall=%d collide=%d integrate=%d", g.wall, g.collide, g.integrate)
	}
}

func TestGLDeviceCompileKernelsSuccess(t *testing.T) {
	next := uint32(10)
	compile := func(string) (uint32, error) {
		next++
		return next, nil
	}
	release := func(p uint32) { t.Errorf("unexpected delete of program %d", p) }

	g := &GLDevice{}
	if err := g.compileKernels(compile, release); err != nil {
		t.Fatalf("compileKernels: %v", err)
	}
	if g.wall != 11 || g.collide != 12 || g.integrate != 13 {
		t.Errorf("programs = %d %d %d, want 11 12 13", g.wall, g.collide, g.integrate)
	}
}
