package shaders

import (
	_ "embed"
)

//go:embed gbuffer.wgsl
var GBufferWGSL string

//go:embed deferred_lighting.wgsl
var DeferredLightingWGSL string

//go:embed colored_transformed.wgsl
var ColoredTransformedWGSL string

//go:embed absolute_colored.wgsl
var AbsoluteColoredWGSL string
