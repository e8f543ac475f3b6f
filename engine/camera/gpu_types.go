package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (48 bytes).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned mirror of a Pose.
// Each direction is stored as a vec4 with w = 0 so the struct needs no padding rules.
type GPUCameraUniform struct {
	Origin        [4]float32 // offset  0: eye position (vec4<f32>)
	ViewDirection [4]float32 // offset 16: unit view direction (vec4<f32>)
	Up            [4]float32 // offset 32: unit up direction (vec4<f32>)
}

// NewGPUCameraUniform packs a Pose into its GPU layout.
//
// Parameters:
//   - p: the pose to pack
//
// Returns:
//   - GPUCameraUniform: the packed uniform
func NewGPUCameraUniform(p Pose) GPUCameraUniform {
	return GPUCameraUniform{
		Origin:        [4]float32{p.Origin[0], p.Origin[1], p.Origin[2], 0},
		ViewDirection: [4]float32{p.ViewDirection[0], p.ViewDirection[1], p.ViewDirection[2], 0},
		Up:            [4]float32{p.Up[0], p.Up[1], p.Up[2], 0},
	}
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i, v := range [3][4]float32{g.Origin, g.ViewDirection, g.Up} {
		for j := range 4 {
			binary.LittleEndian.PutUint32(buf[i*16+j*4:], math.Float32bits(v[j]))
		}
	}
	return buf
}
