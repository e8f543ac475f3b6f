package shader

import "github.com/Carmen-Shannon/oxy-trace/engine/gpu"

// sampledTextureInfo holds the view dimension for a sampled texture type
type sampledTextureInfo struct {
	viewDimension gpu.ViewDimension
	depth         bool
}

// wgslTypeLayout holds the byte size and alignment for a WGSL type per the WGSL specification.
// Used to compute MinBindingSize for buffer bindings.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}
