// Package layout is the single source of truth for every packed binary
// format shared between host-side state construction and the kernel
// dispatches in package kernels: the voxel record, the genome, the
// intent word, the command record, and the simulation parameter block.
//
// Every operation here is pure and total, and pack/unpack pairs satisfy
// a roundtrip law: unpack(pack(v)) == v for all representable v. Changing
// a bit offset here changes it everywhere at once, which is the point —
// drift between a writer and a reader of the packed format is the one
// class of bug this package exists to make impossible.
package layout

// VoxelType is the 8-bit type tag stored in word 0, bits [0:7].
type VoxelType uint8

const (
	Empty VoxelType = iota
	Wall
	Nutrient
	EnergySource
	Protocell
	Waste
	HeatSource
	ColdSource
)

// voxelTypeFromU8 maps an out-of-range byte to Empty, matching the
// original distillation's fallback (unknown types never panic).
func voxelTypeFromU8(v uint8) VoxelType {
	if v > uint8(ColdSource) {
		return Empty
	}
	return VoxelType(v)
}

// Flag bits for Voxel.Flags.
const (
	FlagPlayerPlaced uint8 = 1 << 0
)

// Voxel is the unpacked, host-side representation of one grid cell.
// Packed form is 8 little-endian u32 words (32 bytes) per the layout
// below; see PackVoxel/UnpackVoxel.
//
//	Word 0: [0:7] type | [8:15] flags | [16:31] energy
//	Word 1: [0:15] age | [16:31] species_id
//	Words 2-5: genome (16 bytes)
//	Words 6-7: extra (type-specific state)
type Voxel struct {
	Type      VoxelType
	Flags     uint8
	Energy    uint16
	Age       uint16
	SpeciesID uint16
	Genome    Genome
	Extra     [2]uint32
}

// PackVoxel serializes v into the 8-word wire format.
func PackVoxel(v Voxel) [8]uint32 {
	var w [8]uint32
	w[0] = uint32(v.Type) | (uint32(v.Flags) << 8) | (uint32(v.Energy) << 16)
	w[1] = uint32(v.Age) | (uint32(v.SpeciesID) << 16)
	gw := v.Genome.ToWords()
	w[2], w[3], w[4], w[5] = gw[0], gw[1], gw[2], gw[3]
	w[6], w[7] = v.Extra[0], v.Extra[1]
	return w
}

// UnpackVoxel deserializes the 8-word wire format back into a Voxel.
func UnpackVoxel(w [8]uint32) Voxel {
	return Voxel{
		Type:      voxelTypeFromU8(uint8(w[0] & 0xFF)),
		Flags:     uint8((w[0] >> 8) & 0xFF),
		Energy:    uint16((w[0] >> 16) & 0xFFFF),
		Age:       uint16(w[1] & 0xFFFF),
		SpeciesID: uint16((w[1] >> 16) & 0xFFFF),
		Genome:    GenomeFromWords([4]uint32{w[2], w[3], w[4], w[5]}),
		Extra:     [2]uint32{w[6], w[7]},
	}
}

// SaturatingAddU16 adds b to a, clamping at maxValue instead of
// wrapping. Package kernels uses it for the predation energy gain; its
// metabolism arithmetic saturates through its own float helper instead.
func SaturatingAddU16(a, b uint32, maxValue uint16) uint16 {
	sum := a + b
	if sum > uint32(maxValue) {
		return maxValue
	}
	return uint16(sum)
}

// SaturatingSubU16 subtracts b from a, clamping at 0 instead of
// wrapping on underflow.
func SaturatingSubU16(a, b uint32) uint16 {
	if b >= a {
		return 0
	}
	return uint16(a - b)
}

// SaturatingAddU16Age increments age by one tick, saturating at 65535.
func SaturatingAddU16Age(age uint16) uint16 {
	if age == 0xFFFF {
		return age
	}
	return age + 1
}
