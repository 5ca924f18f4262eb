package layout

import "encoding/binary"

// CommandType identifies a player tool action (§4.5.1).
type CommandType uint32

const (
	CommandPlaceVoxel CommandType = iota
	CommandRemoveVoxel
	CommandSeedProtocells
	CommandApplyToxin
)

// MaxCommandsPerTick is the largest command burst the apply-commands
// kernel processes in a single dispatch (§3).
const MaxCommandsPerTick = 64

// CommandRecordSize is the fixed wire size of one Command, in bytes.
const CommandRecordSize = 64

// Command is one player-issued tool action, applied within a Chebyshev
// radius of (X, Y, Z). Param0/Param1 are type-specific: for
// PlaceVoxel, Param0 is the voxel type to write; for SeedProtocells,
// Param0 is the initial energy; for ApplyToxin, Param0 is the
// resistance threshold.
type Command struct {
	Type    CommandType
	X, Y, Z uint32
	Radius  uint32
	Param0  uint32
	Param1  uint32
}

// EncodeCommand serializes one command into its 64-byte wire record:
// [type:u32, x:u32, y:u32, z:u32, radius:u32, param0:u32, param1:u32, pad:36 bytes].
func EncodeCommand(c Command) [CommandRecordSize]byte {
	var buf [CommandRecordSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(c.Type))
	binary.LittleEndian.PutUint32(buf[4:8], c.X)
	binary.LittleEndian.PutUint32(buf[8:12], c.Y)
	binary.LittleEndian.PutUint32(buf[12:16], c.Z)
	binary.LittleEndian.PutUint32(buf[16:20], c.Radius)
	binary.LittleEndian.PutUint32(buf[20:24], c.Param0)
	binary.LittleEndian.PutUint32(buf[24:28], c.Param1)
	// bytes [28:64) are padding, left zero.
	return buf
}

// DecodeCommand deserializes one 64-byte wire record back into a Command.
func DecodeCommand(buf [CommandRecordSize]byte) Command {
	return Command{
		Type:   CommandType(binary.LittleEndian.Uint32(buf[0:4])),
		X:      binary.LittleEndian.Uint32(buf[4:8]),
		Y:      binary.LittleEndian.Uint32(buf[8:12]),
		Z:      binary.LittleEndian.Uint32(buf[12:16]),
		Radius: binary.LittleEndian.Uint32(buf[16:20]),
		Param0: binary.LittleEndian.Uint32(buf[20:24]),
		Param1: binary.LittleEndian.Uint32(buf[24:28]),
	}
}

// EncodeCommandBuffer serializes a command burst into the wire-stable
// player command format: a 4-byte count prefix followed by up to
// MaxCommandsPerTick 64-byte records. Commands beyond the limit are
// dropped, matching the "up to 64 per tick" rule in §3.
func EncodeCommandBuffer(commands []Command) []byte {
	n := len(commands)
	if n > MaxCommandsPerTick {
		n = MaxCommandsPerTick
	}
	buf := make([]byte, 4+n*CommandRecordSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(n))
	for i := 0; i < n; i++ {
		rec := EncodeCommand(commands[i])
		copy(buf[4+i*CommandRecordSize:], rec[:])
	}
	return buf
}

// DecodeCommandBuffer parses the wire-stable command burst format back
// into a slice of Commands. A malformed (too-short) buffer decodes as
// many whole records as are present and ignores the rest — commands are
// internal protocol state, not untrusted external input, so this never
// needs to surface an error (§7d: kernels are total functions).
func DecodeCommandBuffer(buf []byte) []Command {
	if len(buf) < 4 {
		return nil
	}
	count := int(binary.LittleEndian.Uint32(buf[0:4]))
	if count > MaxCommandsPerTick {
		count = MaxCommandsPerTick
	}
	available := (len(buf) - 4) / CommandRecordSize
	if count > available {
		count = available
	}
	out := make([]Command, count)
	for i := 0; i < count; i++ {
		var rec [CommandRecordSize]byte
		copy(rec[:], buf[4+i*CommandRecordSize:4+(i+1)*CommandRecordSize])
		out[i] = DecodeCommand(rec)
	}
	return out
}
