// SPDX-License-Identifier: GPL-2.0-or-later

// Package binding is the surface handed to the host environment. Hosts hold
// opaque resource ids; construction, lookup, binding and release go through a
// Registry which also keeps the driver-side bookkeeping: which texture is on
// which unit, how much the live set occupies, and the filter settings from
// the cvar system.
package binding

import (
	"strconv"
	"strings"
	"sync"

	"glres/buffer"
	"glres/conlog"
	"glres/cvar"
	"glres/cvars"
	"glres/glctx"
	"glres/scene"
	"glres/texture"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrUnknownResource = errors.New("unknown resource id")

type glMode struct {
	magfilter float32
	minfilter float32
	name      string
}

var glModes = [6]glMode{
	{gl.NEAREST, gl.NEAREST, "GL_NEAREST"},
	{gl.NEAREST, gl.NEAREST_MIPMAP_NEAREST, "GL_NEAREST_MIPMAP_NEAREST"},
	{gl.NEAREST, gl.NEAREST_MIPMAP_LINEAR, "GL_NEAREST_MIPMAP_LINEAR"},
	{gl.LINEAR, gl.LINEAR, "GL_LINEAR"},
	{gl.LINEAR, gl.LINEAR_MIPMAP_NEAREST, "GL_LINEAR_MIPMAP_NEAREST"},
	{gl.LINEAR, gl.LINEAR_MIPMAP_LINEAR, "GL_LINEAR_MIPMAP_LINEAR"},
}

const boundUnits = 8

type Registry struct {
	ctx *glctx.Context

	mu       sync.Mutex
	textures map[uuid.UUID]*texture.Texture
	buffers  map[uuid.UUID]*buffer.Buffer
	bound    [boundUnits]*texture.Texture

	modeIndex      int
	maxAnisotropy  float32
	maxTextureSize int32
}

// New queries the driver limits and returns an empty registry.
func New(ctx *glctx.Context) (*Registry, error) {
	if err := ctx.Check(); err != nil {
		return nil, err
	}
	f := ctx.GL()
	r := &Registry{
		ctx:            ctx,
		textures:       make(map[uuid.UUID]*texture.Texture),
		buffers:        make(map[uuid.UUID]*buffer.Buffer),
		modeIndex:      len(glModes) - 1,
		maxAnisotropy:  f.GetFloat(gl.MAX_TEXTURE_MAX_ANISOTROPY),
		maxTextureSize: f.GetInteger(gl.MAX_TEXTURE_SIZE),
	}
	if r.maxAnisotropy < 1 {
		r.maxAnisotropy = 1
	}
	return r, nil
}

func (r *Registry) NewBuffer(d *scene.BufferDescriptor, usage buffer.Usage) (uuid.UUID, error) {
	b, err := buffer.New(r.ctx, d, usage)
	if err != nil {
		return uuid.Nil, err
	}
	id := uuid.Must(uuid.NewV7())
	r.mu.Lock()
	r.buffers[id] = b
	r.mu.Unlock()
	return id, nil
}

// sizeLimit is the driver texture limit, lowered by gl_max_size when set.
func (r *Registry) sizeLimit() int32 {
	lim := r.maxTextureSize
	if cv := int32(cvars.GlMaxSize.Value()); cv > 0 && (lim <= 0 || cv < lim) {
		lim = cv
	}
	return lim
}

func (r *Registry) NewTexture(d *scene.TextureDescriptor, flags texture.Pref) (uuid.UUID, error) {
	if lim := r.sizeLimit(); lim > 0 && (d.Width > lim || d.Height > lim) {
		return uuid.Nil, errors.Errorf("%dx%d texture exceeds size limit %d",
			d.Width, d.Height, lim)
	}
	t, err := texture.New(r.ctx, d, flags)
	if err != nil {
		return uuid.Nil, err
	}
	if err := t.SetFilter(r.filter()); err != nil {
		t.Release()
		return uuid.Nil, err
	}
	id := uuid.Must(uuid.NewV7())
	r.mu.Lock()
	r.textures[id] = t
	r.mu.Unlock()
	return id, nil
}

func (r *Registry) Buffer(id uuid.UUID) (*buffer.Buffer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buffers[id]
	return b, ok
}

func (r *Registry) Texture(id uuid.UUID) (*texture.Texture, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.textures[id]
	return t, ok
}

func (r *Registry) BindBuffer(id uuid.UUID) error {
	b, ok := r.Buffer(id)
	if !ok {
		return errors.Wrapf(ErrUnknownResource, "buffer %v", id)
	}
	return b.Bind()
}

// BindTextureUnit puts the texture on the unit unless it is already there.
func (r *Registry) BindTextureUnit(id uuid.UUID, unit uint32) error {
	t, ok := r.Texture(id)
	if !ok {
		return errors.Wrapf(ErrUnknownResource, "texture %v", id)
	}
	if unit < boundUnits {
		r.mu.Lock()
		cached := r.bound[unit]
		r.mu.Unlock()
		if cached == t && t.Live() {
			// the cache only says the unit is set, the context still
			// has to be alive and current
			return r.ctx.Check()
		}
	}
	if err := t.Bind(unit); err != nil {
		return err
	}
	if unit < boundUnits {
		r.mu.Lock()
		r.bound[unit] = t
		r.mu.Unlock()
	}
	return nil
}

func (r *Registry) FreeBuffer(id uuid.UUID) {
	r.mu.Lock()
	b, ok := r.buffers[id]
	delete(r.buffers, id)
	r.mu.Unlock()
	if ok {
		b.Release()
	}
}

func (r *Registry) FreeTexture(id uuid.UUID) {
	r.mu.Lock()
	t, ok := r.textures[id]
	delete(r.textures, id)
	r.clearBound(t)
	r.mu.Unlock()
	if ok {
		t.Release()
	}
}

// clearBound drops cache slots pointing at t. Callers hold mu.
func (r *Registry) clearBound(t *texture.Texture) {
	for i := range r.bound {
		if r.bound[i] == t {
			r.bound[i] = nil
		}
	}
}

// ReleaseAll frees every tracked resource. Used on teardown before the
// context goes away.
func (r *Registry) ReleaseAll() {
	r.mu.Lock()
	textures := r.textures
	buffers := r.buffers
	r.textures = make(map[uuid.UUID]*texture.Texture)
	r.buffers = make(map[uuid.UUID]*buffer.Buffer)
	r.bound = [boundUnits]*texture.Texture{}
	r.mu.Unlock()
	for _, t := range textures {
		t.Release()
	}
	for _, b := range buffers {
		b.Release()
	}
}

// Usage reports the live set: resource count, texture texels and the
// approximate driver memory in megabytes.
func (r *Registry) Usage() (int, int, float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	texels := 0
	bytes := 0
	for _, t := range r.textures {
		if !t.Live() {
			continue
		}
		count++
		texels += t.Texels()
		bytes += t.Texels() * 4
	}
	for _, b := range r.buffers {
		if !b.Live() {
			continue
		}
		count++
		bytes += b.Size()
	}
	return count, texels, float32(bytes) / (1024 * 1024)
}

func (r *Registry) LogUsage() {
	count, texels, mb := r.Usage()
	conlog.Printf("%d resources %d texels %.1f megabytes\n", count, texels, mb)
}

func (r *Registry) filter() (float32, float32, float32) {
	r.mu.Lock()
	m := glModes[r.modeIndex]
	r.mu.Unlock()
	a := math32.Min(math32.Max(cvars.GlTextureAnisotropy.Value(), 1), r.maxAnisotropy)
	return m.magfilter, m.minfilter, a
}

func (r *Registry) applyFilterModes() {
	r.mu.Lock()
	textures := make([]*texture.Texture, 0, len(r.textures))
	for _, t := range r.textures {
		textures = append(textures, t)
	}
	r.mu.Unlock()
	mag, min, aniso := r.filter()
	for _, t := range textures {
		if !t.Live() {
			continue
		}
		if err := t.SetFilter(mag, min, aniso); err != nil {
			conlog.Printf("setting filter mode: %v\n", err)
		}
	}
}

// HookCvars attaches the registry to the texture cvars so mode and
// anisotropy changes reach live textures.
func (r *Registry) HookCvars() {
	cvars.GlTextureMode.SetCallback(func(cv *cvar.Cvar) {
		r.textureModeCallback(cv)
	})
	cvars.GlTextureAnisotropy.SetCallback(func(cv *cvar.Cvar) {
		r.anisotropyCallback(cv)
	})
}

func (r *Registry) anisotropyCallback(cv *cvar.Cvar) {
	val := cv.Value()
	switch {
	case val < 1:
		cv.SetByString("1")
	case val > r.maxAnisotropy:
		cv.SetValue(r.maxAnisotropy)
	default:
		r.applyFilterModes()
	}
}

func (r *Registry) textureModeCallback(cv *cvar.Cvar) {
	name := cv.String()
	for i, m := range glModes {
		if m.name == name {
			r.mu.Lock()
			r.modeIndex = i
			r.mu.Unlock()
			r.applyFilterModes()
			return
		}
	}
	// fix up the cvar value and let the callback run again
	ln := strings.ToLower(name)
	for _, m := range glModes {
		if strings.ToLower(m.name) == ln {
			cv.SetByString(m.name)
			return
		}
	}
	i, _ := strconv.Atoi(name)
	if i >= 1 && i <= len(glModes) {
		cv.SetByString(glModes[i-1].name)
		return
	}
	conlog.Printf("\"%s\" is not a valid texturemode\n", name)
	r.mu.Lock()
	cur := glModes[r.modeIndex].name
	r.mu.Unlock()
	cv.SetByString(cur)
}

// FilterModes lists the texture mode names the cvar accepts.
func FilterModes() []string {
	names := make([]string, len(glModes))
	for i, m := range glModes {
		names[i] = m.name
	}
	return names
}
