package environment

// Textures binds each phase to the sky texture identifier shown for it.
type Textures [4]string

func (t Textures) For(p Phase) string {
	if !p.Valid() {
		return ""
	}
	return t[p]
}

// Blend is what the sky surface receives: two textures and the weight of B
// over A.
type Blend struct {
	TextureA string  `json:"textureA"`
	TextureB string  `json:"textureB"`
	Factor   float64 `json:"blend"`
}

// ResolveActive cross-blends the window's From and To textures by progress.
func ResolveActive(w Window, progress float64, textures Textures) Blend {
	return Blend{
		TextureA: textures.For(w.From),
		TextureB: textures.For(w.To),
		Factor:   clamp01(progress),
	}
}

// ResolveStable shows a single texture with a zero blend factor.
func ResolveStable(p Phase, textures Textures) Blend {
	tex := textures.For(p)
	return Blend{TextureA: tex, TextureB: tex, Factor: 0}
}

// Resolve turns an evaluation into the sky blend.
func Resolve(ev Evaluation, textures Textures) Blend {
	if ev.Active {
		return ResolveActive(ev.Window, ev.Progress, textures)
	}
	return ResolveStable(ev.Phase, textures)
}
