package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
)

// wgslPrimitiveLayouts holds host-shareable sizes and alignments for WGSL scalars, vectors,
// and f32 matrices under both the templated and the shorthand spelling.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslPrimitiveLayouts = buildPrimitiveLayouts()

func buildPrimitiveLayouts() map[string]wgslTypeLayout {
	layouts := map[string]wgslTypeLayout{
		"bool":        {4, 4},
		"atomic<u32>": {4, 4},
		"atomic<i32>": {4, 4},
	}
	for _, scalar := range []string{"f32", "i32", "u32"} {
		layouts[scalar] = wgslTypeLayout{4, 4}
		for n := uint64(2); n <= 4; n++ {
			// vec3 aligns like vec4
			align := uint64(8)
			if n > 2 {
				align = 16
			}
			l := wgslTypeLayout{n * 4, align}
			layouts[fmt.Sprintf("vec%d<%s>", n, scalar)] = l
			layouts[fmt.Sprintf("vec%d%c", n, scalar[0])] = l
		}
	}
	// matCxR is C columns of vecR, each padded to the column alignment.
	for c := uint64(2); c <= 4; c++ {
		for r := uint64(2); r <= 4; r++ {
			col := layouts[fmt.Sprintf("vec%d<f32>", r)]
			l := wgslTypeLayout{c * roundUpAlign(col.align, col.size), col.align}
			layouts[fmt.Sprintf("mat%dx%d<f32>", c, r)] = l
			layouts[fmt.Sprintf("mat%dx%df", c, r)] = l
		}
	}
	return layouts
}

// roundUpAlign rounds value up to a multiple of alignment, which must be a power of two.
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// resolveTypeLayout looks typeName up among the primitives and the structs resolved so far.
// Arrays resolve through their element type; a runtime-sized array counts as one element, which
// is the smallest binding the shader can address.
//
// Parameters:
//   - typeName: a WGSL type such as "f32", "CameraUniform", or "array<vec4<f32>, 4>"
//   - known: struct layouts resolved so far
//
// Returns:
//   - wgslTypeLayout: the resolved layout
//   - bool: false if the type, or an array's element type, is unknown
func resolveTypeLayout(typeName string, known map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	if l, ok := wgslPrimitiveLayouts[typeName]; ok {
		return l, true
	}
	if l, ok := known[typeName]; ok {
		return l, true
	}

	base, params := splitTypeParams(typeName)
	if base != "array" || params == "" {
		return wgslTypeLayout{}, false
	}
	parts := splitAtTopLevelCommas(params)
	elem, ok := resolveTypeLayout(strings.TrimSpace(parts[0]), known)
	if !ok {
		return wgslTypeLayout{}, false
	}

	count := uint64(1)
	if len(parts) > 1 {
		n, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return wgslTypeLayout{}, false
		}
		count = n
	}
	return wgslTypeLayout{count * roundUpAlign(elem.align, elem.size), elem.align}, true
}

// computeStructLayout places each non-builtin field at its next aligned offset and rounds the
// total up to the largest field alignment.
func computeStructLayout(ps parsedStruct, known map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	var offset uint64
	align := uint64(1)
	for _, field := range ps.fields {
		if field.isBuiltin {
			continue
		}
		l, ok := resolveTypeLayout(field.typeName, known)
		if !ok {
			return wgslTypeLayout{}, false
		}
		offset = roundUpAlign(l.align, offset) + l.size
		align = max(align, l.align)
	}
	return wgslTypeLayout{roundUpAlign(align, offset), align}, true
}

// computeStructSizes resolves every struct whose fields can be resolved, repeating until a pass
// makes no progress so that structs may nest in any declaration order.
//
// Parameters:
//   - structs: the parsed struct blocks
//
// Returns:
//   - map[string]wgslTypeLayout: layouts keyed by struct name
func computeStructSizes(structs []parsedStruct) map[string]wgslTypeLayout {
	resolved := make(map[string]wgslTypeLayout, len(structs))
	pending := slices.Clone(structs)
	for len(pending) > 0 {
		before := len(pending)
		pending = slices.DeleteFunc(pending, func(ps parsedStruct) bool {
			l, ok := computeStructLayout(ps, resolved)
			if ok {
				resolved[ps.name] = l
			}
			return ok
		})
		if len(pending) == before {
			break
		}
	}
	return resolved
}

// classifyResource creates a gpu.BindGroupLayoutEntry from a parsed WGSL resource declaration.
// The resource category (buffer, texture, sampler, storage texture) is decided by the address
// space qualifier and type name.
//
// Parameters:
//   - binding: the binding index from @binding(N)
//   - visibility: the shader stage visibility flag
//   - addressSpace: the address space qualifier (e.g. "uniform", "storage, read_write"), empty for handle types
//   - typeName: the WGSL type string (e.g. "CameraUniform", "texture_2d<f32>", "sampler")
//
// Returns:
//   - gpu.BindGroupLayoutEntry: a populated layout entry for the resource
func classifyResource(binding uint32, visibility gpu.ShaderStage, addressSpace, typeName string) gpu.BindGroupLayoutEntry {
	entry := gpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
	}

	if addressSpace != "" {
		switch {
		case addressSpace == "uniform":
			entry.Type = gpu.BindingTypeUniformBuffer
		case strings.HasPrefix(addressSpace, "storage"):
			if strings.Contains(addressSpace, "read_write") {
				entry.Type = gpu.BindingTypeStorageBuffer
			} else {
				entry.Type = gpu.BindingTypeReadOnlyStorageBuffer
			}
		}
		return entry
	}

	switch {
	case typeName == "sampler":
		entry.Type = gpu.BindingTypeFilteringSampler
	case strings.HasPrefix(typeName, "texture_storage_"):
		classifyStorageTexture(typeName, &entry)
	case strings.HasPrefix(typeName, "texture_"):
		classifySampledTexture(typeName, &entry)
	}

	return entry
}

// classifySampledTexture populates a sampled texture entry from a type such as "texture_2d<f32>"
// or "texture_depth_2d".
func classifySampledTexture(typeName string, entry *gpu.BindGroupLayoutEntry) {
	base, param := splitTypeParams(typeName)

	entry.Type = gpu.BindingTypeSampledTexture
	info, ok := wgslSampledTextureMap[base]
	if !ok {
		return
	}
	entry.ViewDimension = info.viewDimension
	if info.depth {
		entry.SampleType = gpu.SampleTypeDepth
		return
	}
	if st, ok := wgslSampleTypeMap[param]; ok {
		entry.SampleType = st
	}
}

// classifyStorageTexture populates a storage texture entry from a type such as
// "texture_storage_2d<rgba8unorm, write>".
func classifyStorageTexture(typeName string, entry *gpu.BindGroupLayoutEntry) {
	base, params := splitTypeParams(typeName)

	entry.Type = gpu.BindingTypeStorageTexture
	if dim, ok := wgslStorageTextureDimMap[base]; ok {
		entry.ViewDimension = dim
	}

	parts := strings.SplitN(params, ",", 2)
	if format, ok := wgslTexelFormatMap[strings.TrimSpace(parts[0])]; ok {
		entry.StorageFormat = format
	}
	if len(parts) == 2 {
		if access, ok := wgslStorageAccessMap[strings.TrimSpace(parts[1])]; ok {
			entry.StorageAccess = access
		}
	}
}

// splitTypeParams splits "texture_2d<f32>" into ("texture_2d", "f32"). Types without
// parameters return an empty params string.
func splitTypeParams(typeName string) (base string, params string) {
	base, params, ok := strings.Cut(typeName, "<")
	if !ok {
		return typeName, ""
	}
	return base, strings.TrimSpace(strings.TrimSuffix(params, ">"))
}

// stripComments drops line comments and nested block comments. Newlines are kept so that
// line-oriented scans still see one declaration per line.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		c := source[i]
		var next byte
		if i+1 < len(source) {
			next = source[i+1]
		}
		switch {
		case c == '/' && next == '*':
			depth++
			i++
		case c == '*' && next == '/' && depth > 0:
			depth--
			i++
		case depth > 0:
			if c == '\n' {
				sb.WriteByte('\n')
			}
		case c == '/' && next == '/':
			for i < len(source) && source[i] != '\n' {
				i++
			}
			if i < len(source) {
				sb.WriteByte('\n')
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// splitAtTopLevelCommas splits s at commas outside angle brackets, so a struct body splits into
// fields and array<vec4<f32>, 4> keeps its count.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
