package light

// ShadowMapResolution is the default width and height in texels of the shadow
// depth texture. The renderer uses it unless the shadow config overrides it or
// asks the map to follow the output size.
const ShadowMapResolution = 2048

// DefaultShadowFovY is the default vertical field of view, in degrees, of the
// point light's perspective shadow frustum.
const DefaultShadowFovY float32 = 90.0

// DefaultShadowNear is the default near plane for the light's shadow projection.
const DefaultShadowNear float32 = 0.1

// DefaultShadowFar is the default far plane for the light's shadow projection.
const DefaultShadowFar float32 = 100.0

// DefaultShadowBias is the constant depth bias applied to shadow comparisons
// to reduce shadow acne artifacts.
const DefaultShadowBias float32 = 0.002

// DefaultPCFRadius is the default percentage-closer filtering radius in texels.
// A radius of r samples a (2r+1)x(2r+1) kernel.
const DefaultPCFRadius = 1
