package ndcore

// ColorMode mirrors the handful of well-known values the "ColorMode"
// attribute carries in the original imaging pipeline. The conversion
// kernel treats this attribute specially (see Pool.Convert): when a
// shape-changing convert collapses the color axis away from size 3, a
// ColorMode of RGB1/RGB2/RGB3 is rewritten to Mono.
type ColorMode int32

const (
	ColorModeMono ColorMode = iota
	ColorModeBayer
	ColorModeRGB1
	ColorModeRGB2
	ColorModeRGB3
)
