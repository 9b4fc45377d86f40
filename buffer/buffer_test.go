// SPDX-License-Identifier: GPL-2.0-or-later

package buffer

import (
	"bytes"
	"errors"
	"testing"

	"glres/glctx"
	"glres/glh"
	"glres/glh/glhtest"
	"glres/scene"

	"github.com/go-gl/gl/v4.6-core/gl"
)

func newCtx(t *testing.T) (*glctx.Context, *glhtest.Driver) {
	t.Helper()
	d := glhtest.New()
	c := glctx.New(d)
	if err := c.MakeCurrent(); err != nil {
		t.Fatalf("MakeCurrent() = %v", err)
	}
	t.Cleanup(glctx.Detach)
	return c, d
}

func geometry(n int) *scene.BufferDescriptor {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i)
	}
	return &scene.BufferDescriptor{Data: data, Stride: 12}
}

func TestConstructBindReleaseBind(t *testing.T) {
	c, d := newCtx(t)
	b, err := New(c, geometry(36), Static)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if err := b.Bind(); err != nil {
		t.Fatalf("Bind() = %v", err)
	}
	b.Release()
	if err := b.Bind(); !errors.Is(err, glh.ErrUseAfterRelease) {
		t.Errorf("Bind() after Release = %v, want ErrUseAfterRelease", err)
	}
	if d.Live() != 0 {
		t.Errorf("%d live driver objects after Release", d.Live())
	}
}

func TestConstructUploadsVerbatim(t *testing.T) {
	c, d := newCtx(t)
	src := geometry(36)
	b, err := New(c, src, Static)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if b.Size() != 36 {
		t.Errorf("Size() = %d, want 36", b.Size())
	}
	if len(d.Buffers) != 1 {
		t.Fatalf("%d driver buffers", len(d.Buffers))
	}
	for _, buf := range d.Buffers {
		if !bytes.Equal(buf.Data, src.Data) {
			t.Errorf("driver bytes differ from source")
		}
		if buf.Usage != gl.STATIC_DRAW {
			t.Errorf("usage = %#x, want GL_STATIC_DRAW", buf.Usage)
		}
	}
}

func TestConstructIndexBuffer(t *testing.T) {
	c, d := newCtx(t)
	_, err := New(c, &scene.BufferDescriptor{Data: []byte{0, 1, 2}, Index: true}, Dynamic)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	for _, buf := range d.Buffers {
		if buf.Usage != gl.DYNAMIC_DRAW {
			t.Errorf("usage = %#x, want GL_DYNAMIC_DRAW", buf.Usage)
		}
	}
}

func TestConstructBadDescriptor(t *testing.T) {
	c, d := newCtx(t)
	if _, err := New(c, &scene.BufferDescriptor{Stride: 12}, Static); err == nil {
		t.Errorf("New() with empty descriptor = nil")
	}
	if len(d.Calls) != 0 {
		t.Errorf("driver calls on failed validation: %v", d.Calls)
	}
}

func TestConstructAllocationFailure(t *testing.T) {
	c, d := newCtx(t)
	d.FailNext(gl.OUT_OF_MEMORY)
	if _, err := New(c, geometry(36), Static); !errors.Is(err, glh.ErrAllocation) {
		t.Fatalf("New() = %v, want ErrAllocation", err)
	}
	if d.Live() != 0 {
		t.Errorf("%d live driver objects after failed construction", d.Live())
	}
}

func TestConstructWithoutContext(t *testing.T) {
	d := glhtest.New()
	c := glctx.New(d)
	// context never made current
	if _, err := New(c, geometry(36), Static); !errors.Is(err, glctx.ErrContextAffinity) {
		t.Errorf("New() = %v, want ErrContextAffinity", err)
	}
	if len(d.Calls) != 0 {
		t.Errorf("driver calls without a current context: %v", d.Calls)
	}
}

func TestUpdateInPlace(t *testing.T) {
	c, d := newCtx(t)
	b, err := New(c, geometry(36), Dynamic)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	repl := geometry(36)
	for i := range repl.Data {
		repl.Data[i] = byte(200 - i)
	}
	if err := b.UpdateInPlace(repl); err != nil {
		t.Fatalf("UpdateInPlace() = %v", err)
	}
	for _, buf := range d.Buffers {
		if !bytes.Equal(buf.Data, repl.Data) {
			t.Errorf("driver bytes not updated")
		}
	}
}

func TestUpdateInPlaceSizeMismatch(t *testing.T) {
	c, _ := newCtx(t)
	b, err := New(c, geometry(36), Dynamic)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if err := b.UpdateInPlace(geometry(48)); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("UpdateInPlace(48) = %v, want ErrSizeMismatch", err)
	}
	if b.Size() != 36 {
		t.Errorf("Size() = %d after failed update", b.Size())
	}
}

func TestUpdateGrows(t *testing.T) {
	c, d := newCtx(t)
	b, err := New(c, geometry(36), Dynamic)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	big := geometry(72)
	if err := b.Update(big); err != nil {
		t.Fatalf("Update(72) = %v", err)
	}
	if b.Size() != 72 {
		t.Errorf("Size() = %d, want 72", b.Size())
	}
	for _, buf := range d.Buffers {
		if !bytes.Equal(buf.Data, big.Data) {
			t.Errorf("driver bytes differ from grown source")
		}
	}
}

func TestUpdateShrinkInPlaceKeepsAllocation(t *testing.T) {
	c, _ := newCtx(t)
	b, err := New(c, geometry(36), Dynamic)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if err := b.Update(geometry(12)); err != nil {
		t.Fatalf("Update(12) = %v", err)
	}
	if b.Size() != 36 {
		t.Errorf("Size() = %d, allocation should stay at 36", b.Size())
	}
}

func TestUpdateTargetChange(t *testing.T) {
	c, _ := newCtx(t)
	b, err := New(c, geometry(36), Static)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if err := b.Update(&scene.BufferDescriptor{Data: []byte{0, 1}, Index: true}); err == nil {
		t.Errorf("Update() switching to index data = nil")
	}
}

func TestReleaseIdempotent(t *testing.T) {
	c, d := newCtx(t)
	b, err := New(c, geometry(36), Static)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	for i := 0; i < 3; i++ {
		b.Release()
	}
	if d.Deletes != 1 {
		t.Errorf("%d driver deletes after 3 Release calls", d.Deletes)
	}
	if b.Live() {
		t.Errorf("Live() = true after Release")
	}
}

func TestOperationsAfterRelease(t *testing.T) {
	c, _ := newCtx(t)
	b, err := New(c, geometry(36), Dynamic)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	b.Release()
	if err := b.Update(geometry(36)); !errors.Is(err, glh.ErrUseAfterRelease) {
		t.Errorf("Update() after Release = %v, want ErrUseAfterRelease", err)
	}
	if err := b.UpdateInPlace(geometry(36)); !errors.Is(err, glh.ErrUseAfterRelease) {
		t.Errorf("UpdateInPlace() after Release = %v, want ErrUseAfterRelease", err)
	}
}

func TestOperationsAfterContextLoss(t *testing.T) {
	c, d := newCtx(t)
	b, err := New(c, geometry(36), Static)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	c.Invalidate()
	before := len(d.Calls)
	if err := b.Bind(); !errors.Is(err, glctx.ErrContextInvalid) {
		t.Errorf("Bind() after context loss = %v, want ErrContextInvalid", err)
	}
	b.Release()
	if got := len(d.Calls); got != before {
		t.Errorf("driver calls after context loss: %v", d.Calls[before:])
	}
}

func TestFailedGrowReleasesBuffer(t *testing.T) {
	c, d := newCtx(t)
	b, err := New(c, geometry(36), Dynamic)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	d.FailNext(gl.OUT_OF_MEMORY)
	if err := b.Update(geometry(72)); !errors.Is(err, glh.ErrAllocation) {
		t.Fatalf("Update(72) = %v, want ErrAllocation", err)
	}
	if b.Live() {
		t.Errorf("buffer live after failed grow")
	}
	if err := b.Bind(); !errors.Is(err, glh.ErrUseAfterRelease) {
		t.Errorf("Bind() after failed grow = %v, want ErrUseAfterRelease", err)
	}
	if d.Live() != 0 {
		t.Errorf("%d live driver objects after failed grow", d.Live())
	}
}
