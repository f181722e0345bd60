package material

import (
	"fmt"

	"github.com/misrayazgan/RayTracer/pkg/core"
)

var decalModes = map[string]core.DecalMode{
	"replace_kd":         core.DecalReplaceKd,
	"blend_kd":           core.DecalBlendKd,
	"replace_normal":     core.DecalReplaceNormal,
	"replace_background": core.DecalReplaceBackground,
	"replace_all":        core.DecalReplaceAll,
	"bump_normal":        core.DecalBumpNormal,
}

// ParseDecalMode maps the scene-file decal mode name
func ParseDecalMode(s string) (core.DecalMode, error) {
	mode, ok := decalModes[s]
	if !ok {
		return core.DecalReplaceKd, fmt.Errorf("unknown decal mode %q", s)
	}
	return mode, nil
}

// IsNormalTexture reports whether a texture perturbs normals instead of coloring
func IsNormalTexture(texture core.Texture) bool {
	mode := texture.Decal()
	return mode == core.DecalReplaceNormal || mode == core.DecalBumpNormal
}
