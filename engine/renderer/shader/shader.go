package shader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
)

// ErrNoEntryPoint is returned when a shader source has no entry point for its shader type.
var ErrNoEntryPoint = errors.New("shader: no entry point")

// ShaderType identifies whether a shader is a render shader or a compute shader.
type ShaderType int

const (
	// ShaderTypeCompute indicates a shader containing a @compute entry point.
	ShaderTypeCompute ShaderType = iota

	// ShaderTypeVertex is the vertex stage of a render pipeline.
	ShaderTypeVertex

	// ShaderTypeFragment is the fragment stage of a render pipeline, paired with a vertex shader.
	ShaderTypeFragment
)

// String returns the WGSL attribute name of the shader type.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeCompute:
		return "compute"
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	bindGroupLayoutDescriptors map[int]gpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	workGroupSize              [3]uint32
	entryPoint                 string
	declarations               []Annotation
}

// Shader is a pre-processed and parsed WGSL shader stage. It exposes the shader's key,
// processed source, entry point, bind group layout descriptors, workgroup size, and the
// @oxy declarations needed for pipeline creation and resource wiring.
type Shader interface {
	// Key retrieves the unique identifier for this shader.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the processed WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code with annotations expanded
	Source() string

	// BindGroupLayoutDescriptor retrieves the bind group layout descriptor for a group index.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - gpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if the group is not declared
	BindGroupLayoutDescriptor(group int) gpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors keyed by
	// group index.
	//
	// Returns:
	//   - map[int]gpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]gpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name declared at a group and binding index.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// EntryPoint returns the entry point name for this shader.
	//
	// Returns:
	//   - string: the entry point name (e.g. "main")
	EntryPoint() string

	// WorkgroupSize returns the workgroup size dimensions for compute shaders.
	// Returns [0, 0, 0] for render shaders and [1, 1, 1] when @workgroup_size is absent.
	//
	// Returns:
	//   - [3]uint32: the workgroup size as [x, y, z]
	WorkgroupSize() [3]uint32

	// Stage returns the programmable stage descriptor used to create a pipeline from this shader.
	//
	// Returns:
	//   - gpu.ProgrammableStage: the label, code, and entry point
	Stage() gpu.ProgrammableStage

	// ShaderType returns the type of the shader (vertex, fragment, or compute).
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex, ShaderTypeFragment, or ShaderTypeCompute
	ShaderType() ShaderType

	// Declarations returns the group and provider annotations parsed from the shader source.
	//
	// Returns:
	//   - []Annotation: the declarations in source order
	Declarations() []Annotation

	// FindBinding returns the group and binding of the first declaration matching the
	// provider identity (or struct type, for group annotations) and optional role.
	//
	// Parameters:
	//   - identity: the provider identity or struct type to match
	//   - role: the binding role to match, or "" to match any
	//
	// Returns:
	//   - int: the group index
	//   - int: the binding index
	//   - bool: true if a matching declaration was found
	FindBinding(identity, role AnnotationArg) (int, int, bool)
}

var _ Shader = &shader{}

// NewShader pre-processes and parses WGSL source into a Shader.
//
// Parameters:
//   - key: a unique identifier for the shader, used as the pipeline label
//   - shaderType: the stage the source provides an entry point for
//   - source: the raw WGSL source, possibly containing @oxy annotations
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if pre-processing fails or no entry point exists for shaderType
func NewShader(key string, shaderType ShaderType, source string) (Shader, error) {
	if source == "" {
		return nil, fmt.Errorf("shader %s: empty source", key)
	}
	pp := NewPreProcessor()
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: pre-process: %w", key, err)
	}

	s := &shader{
		key:          key,
		source:       processed,
		shaderType:   shaderType,
		declarations: append([]Annotation(nil), pp.Declarations()...),
	}
	s.entryPoint = parseEntryPoint(s.source, shaderType)
	if s.entryPoint == "" {
		return nil, fmt.Errorf("shader %s: %w for %s stage", key, ErrNoEntryPoint, shaderType)
	}

	var visibility gpu.ShaderStage
	switch shaderType {
	case ShaderTypeVertex:
		visibility = gpu.ShaderStageVertex
	case ShaderTypeFragment:
		visibility = gpu.ShaderStageFragment
	case ShaderTypeCompute:
		visibility = gpu.ShaderStageCompute
		s.workGroupSize = parseWorkgroupSize(s.source)
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(s.source, visibility)
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) WorkgroupSize() [3]uint32 {
	return s.workGroupSize
}

func (s *shader) BindGroupLayoutDescriptor(group int) gpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]gpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) Stage() gpu.ProgrammableStage {
	return gpu.ProgrammableStage{
		Label:      s.key,
		Code:       s.source,
		EntryPoint: s.entryPoint,
	}
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}

func (s *shader) FindBinding(identity, role AnnotationArg) (int, int, bool) {
	for _, decl := range s.declarations {
		if decl.Group == nil || decl.Binding == nil {
			continue
		}
		switch decl.Type {
		case AnnotationTypeBindingGroup:
			if decl.Args[2] == identity && role == "" {
				return *decl.Group, *decl.Binding, true
			}
		case AnnotationTypeProvider:
			if decl.Args[0] == identity && (role == "" || decl.Role() == role) {
				return *decl.Group, *decl.Binding, true
			}
		}
	}
	return -1, -1, false
}
