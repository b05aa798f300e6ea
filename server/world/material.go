package world

import "image/color"

// TextureHandle is an opaque reference to a GPU texture, owned and
// interpreted by the external renderer/mesher. The registry only stores and
// hands it back; it never inspects or decodes it.
type TextureHandle any

// Texture describes an optional texture bound to a Material.
type Texture struct {
	Handle TextureHandle
	// AlphaTest marks the texture as cutout-alpha (e.g. leaves) rather than
	// fully opaque or fully blended. A Material with AlphaTest set is never
	// considered opaque for culling purposes.
	AlphaTest bool
	// Layer is the texture array layer the mesher should sample from.
	Layer int
}

// Material describes one of a block's six faces: its flat color (used when
// no texture is bound, and as a tint alongside one), whether it behaves as a
// liquid (affects translucent-mesh routing), and an optional Texture.
type Material struct {
	Name      string
	nameHash  uint64
	Color     color.RGBA
	Liquid    bool
	Texture   *Texture
}

// opaque reports whether a face carrying this material fully occludes the
// neighboring cell for culling purposes. A liquid face, an alpha-tested
// texture face, or a blended (partially transparent) color never occludes.
func (m Material) opaque() bool {
	if m.Liquid {
		return false
	}
	if m.Texture != nil && m.Texture.AlphaTest {
		return false
	}
	if m.Color.A < 255 {
		return false
	}
	return true
}
