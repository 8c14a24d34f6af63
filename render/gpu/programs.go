package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/deferred/render/core"
	"github.com/gekko3d/deferred/render/shaders"
)

type pipelineSpec struct {
	shader  ShaderType
	source  string
	targets []wgpu.ColorTargetState
	depth   *wgpu.DepthStencilState
	cull    wgpu.CullMode
}

// Programs owns the compiled pipelines of the deferred renderer.
type Programs struct {
	ctx   *Context
	Cache *ShaderCache
}

// BuildPrograms compiles every shader, allocates its uniform buffer and binds
// the G-buffer textures to the lighting program.
func BuildPrograms(ctx *Context, gbuffer *GBufferTarget, logger Logger) (*Programs, error) {
	surfaceTarget := []wgpu.ColorTargetState{{
		Format:    ctx.SurfaceFormat(),
		WriteMask: wgpu.ColorWriteMaskAll,
	}}

	specs := []pipelineSpec{
		{
			shader:  ShaderGeometryDeferred,
			source:  shaders.GBufferWGSL,
			targets: gbuffer.ColorTargets(),
			depth:   depthState(true, wgpu.CompareFunctionLess),
			cull:    wgpu.CullModeBack,
		},
		{
			shader:  ShaderDeferredLighting,
			source:  shaders.DeferredLightingWGSL,
			targets: surfaceTarget,
			cull:    wgpu.CullModeNone,
		},
		{
			shader:  ShaderColoredTransformed,
			source:  shaders.ColoredTransformedWGSL,
			targets: surfaceTarget,
			depth:   depthState(true, wgpu.CompareFunctionLess),
			cull:    wgpu.CullModeBack,
		},
		{
			shader:  ShaderAbsoluteColored,
			source:  shaders.AbsoluteColoredWGSL,
			targets: surfaceTarget,
			depth:   depthState(false, wgpu.CompareFunctionAlways),
			cull:    wgpu.CullModeNone,
		},
	}

	p := &Programs{ctx: ctx, Cache: NewShaderCache(ctx, logger)}
	for _, spec := range specs {
		program, err := p.build(spec)
		if err != nil {
			return nil, err
		}
		p.Cache.Register(program)
	}

	lighting, _ := p.Cache.GetShaderProgram(ShaderDeferredLighting)
	entries := make([]wgpu.BindGroupEntry, len(gbuffer.ColorViews))
	for i, view := range gbuffer.ColorViews {
		entries[i] = wgpu.BindGroupEntry{Binding: uint32(i), TextureView: view}
	}
	group, err := ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "GBuffer Textures",
		Layout:  lighting.Pipeline.GetBindGroupLayout(1),
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("bind g-buffer textures: %w", err)
	}
	lighting.BindGroups = append(lighting.BindGroups, group)

	return p, nil
}

func (p *Programs) build(spec pipelineSpec) (*Program, error) {
	device := p.ctx.Device
	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          spec.shader.String(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: spec.source},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", spec.shader, err)
	}
	defer module.Release()

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: spec.shader.String() + " Pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{spec.shader.Layout().BufferLayout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets:    spec.targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  spec.cull,
		},
		DepthStencil: spec.depth,
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", spec.shader, err)
	}

	layout := uniformLayouts[spec.shader]
	uniforms, err := p.ctx.CreateBuffer(spec.shader.String()+" Uniforms", layout.size, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("uniforms %s: %w", spec.shader, err)
	}
	group, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  spec.shader.String() + " Uniforms",
		Layout: pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: uniforms, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("bind uniforms %s: %w", spec.shader, err)
	}

	return &Program{
		Type:          spec.shader,
		Pipeline:      pipeline,
		BindGroups:    []*wgpu.BindGroup{group},
		UniformBuffer: uniforms,
	}, nil
}

// LTWBinder returns the BindLTWFunc of a transformed program. The table is
// bound right after the program's fixed groups.
func (p *Programs) LTWBinder(shader ShaderType) BindLTWFunc {
	return func(buf *wgpu.Buffer) (*wgpu.BindGroup, error) {
		program, ok := p.Cache.GetShaderProgram(shader)
		if !ok {
			return nil, fmt.Errorf("no program for %s", shader)
		}
		return p.ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  shader.String() + " LTW",
			Layout: program.Pipeline.GetBindGroupLayout(uint32(len(program.BindGroups))),
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: buf, Size: wgpu.WholeSize},
			},
		})
	}
}

// NewBatcher creates the batcher for shader. Transformed layouts get their
// own transform table keyed by handles from registry.
func (p *Programs) NewBatcher(shader ShaderType, registry *core.HandleRegistry) (*Batcher, error) {
	program, ok := p.Cache.GetShaderProgram(shader)
	if !ok {
		return nil, fmt.Errorf("no program for %s", shader)
	}
	if !shader.Layout().Transformed() {
		return NewBatcher(p.ctx, program, nil, nil), nil
	}
	return NewBatcher(p.ctx, program, core.NewTransformTable(registry), p.LTWBinder(shader)), nil
}

func depthState(write bool, compare wgpu.CompareFunction) *wgpu.DepthStencilState {
	return &wgpu.DepthStencilState{
		Format:            DepthFormat,
		DepthWriteEnabled: write,
		DepthCompare:      compare,
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
	}
}
