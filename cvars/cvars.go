// SPDX-License-Identifier: GPL-2.0-or-later

package cvars

import (
	"glres/cvar"
)

var (
	GlMaxSize           *cvar.Cvar
	GlTextureAnisotropy *cvar.Cvar
	GlTextureMode       *cvar.Cvar
)

func init() {
	GlMaxSize = cvar.MustRegister("gl_max_size", "0", cvar.NONE)
	GlTextureAnisotropy = cvar.MustRegister("gl_texture_anisotropy", "1", cvar.NONE)
	GlTextureMode = cvar.MustRegister("gl_texturemode", "GL_LINEAR_MIPMAP_LINEAR", cvar.NONE)
}
