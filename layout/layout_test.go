package layout

import (
	"math/rand"
	"testing"
)

func TestVoxelRoundtripEmpty(t *testing.T) {
	v := Voxel{}
	got := UnpackVoxel(PackVoxel(v))
	if got != v {
		t.Fatalf("roundtrip mismatch: got %+v, want %+v", got, v)
	}
}

func TestVoxelRoundtripMaxValues(t *testing.T) {
	v := Voxel{
		Type:      ColdSource,
		Flags:     0xFF,
		Energy:    0xFFFF,
		Age:       0xFFFF,
		SpeciesID: 0xFFFF,
		Genome:    Genome{Bytes: [16]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
		Extra:     [2]uint32{0xFFFFFFFF, 0xFFFFFFFF},
	}
	got := UnpackVoxel(PackVoxel(v))
	if got != v {
		t.Fatalf("roundtrip mismatch: got %+v, want %+v", got, v)
	}
}

func TestVoxelRoundtripRandom(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		var g Genome
		r.Read(g.Bytes[:])
		v := Voxel{
			Type:      VoxelType(r.Intn(8)),
			Flags:     uint8(r.Intn(256)),
			Energy:    uint16(r.Intn(65536)),
			Age:       uint16(r.Intn(65536)),
			SpeciesID: uint16(r.Intn(65536)),
			Genome:    g,
			Extra:     [2]uint32{r.Uint32(), r.Uint32()},
		}
		got := UnpackVoxel(PackVoxel(v))
		if got != v {
			t.Fatalf("roundtrip mismatch at iter %d: got %+v, want %+v", i, got, v)
		}
	}
}

func TestVoxelWordLayoutMatchesSpec(t *testing.T) {
	v := Voxel{
		Type:      Protocell, // 4
		Flags:     0xAB,
		Energy:    0x1234,
		Age:       0x5678,
		SpeciesID: 0x9ABC,
	}
	w := PackVoxel(v)

	if got := w[0] & 0xFF; got != 4 {
		t.Errorf("type bits = %d, want 4", got)
	}
	if got := (w[0] >> 8) & 0xFF; got != 0xAB {
		t.Errorf("flags bits = %#x, want 0xAB", got)
	}
	if got := (w[0] >> 16) & 0xFFFF; got != 0x1234 {
		t.Errorf("energy bits = %#x, want 0x1234", got)
	}
	if got := w[1] & 0xFFFF; got != 0x5678 {
		t.Errorf("age bits = %#x, want 0x5678", got)
	}
	if got := (w[1] >> 16) & 0xFFFF; got != 0x9ABC {
		t.Errorf("species_id bits = %#x, want 0x9ABC", got)
	}
}

func TestVoxelTypeFromU8InvalidDefaultsEmpty(t *testing.T) {
	v := UnpackVoxel([8]uint32{8, 0, 0, 0, 0, 0, 0, 0})
	if v.Type != Empty {
		t.Errorf("type = %v, want Empty", v.Type)
	}
	v = UnpackVoxel([8]uint32{255, 0, 0, 0, 0, 0, 0, 0})
	if v.Type != Empty {
		t.Errorf("type = %v, want Empty", v.Type)
	}
}

func TestGenomeRoundtripWords(t *testing.T) {
	g := Genome{Bytes: [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}}
	got := GenomeFromWords(g.ToWords())
	if got != g {
		t.Fatalf("genome roundtrip mismatch: got %+v, want %+v", got, g)
	}
}

func TestSpeciesIDNeverZero(t *testing.T) {
	g := Genome{}
	if g.SpeciesID() == 0 {
		t.Fatal("species id of all-zero genome must not be 0")
	}
}

func TestSpeciesIDDeterministic(t *testing.T) {
	g := Genome{Bytes: [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}}
	if got := g.SpeciesID(); got != 30752 {
		t.Fatalf("species id = %d, want 30752 (matching reference implementation)", got)
	}
}

func TestSpeciesHashSensitivity(t *testing.T) {
	changed := 0
	for i := uint32(0); i < 100; i++ {
		var a, b [16]byte
		for j := uint32(0); j < 16; j++ {
			a[j] = byte((i*7 + j*13) & 0xFF)
			b[j] = a[j]
		}
		byteIdx := i % 16
		bitIdx := (i / 16) % 8
		b[byteIdx] ^= 1 << bitIdx
		if (Genome{Bytes: a}).SpeciesID() != (Genome{Bytes: b}).SpeciesID() {
			changed++
		}
	}
	if changed < 90 {
		t.Fatalf("only %d/100 single-bit flips changed species_id", changed)
	}
}

func TestGenomeMutateRespectsRate(t *testing.T) {
	g := Genome{}
	var draws [16]uint32
	// Every draw has low byte 0 -> always below any nonzero rate.
	for i := range draws {
		draws[i] = 0x00AB00 | uint32(i)<<16
	}
	mutated := g.Mutate(draws, 1)
	for i, b := range mutated.Bytes {
		want := uint8((draws[i] >> 8) & 0xFF)
		if b != want {
			t.Errorf("byte %d = %d, want %d", i, b, want)
		}
	}

	// Rate 0 never mutates (roll&0xFF can be 0, but 0 < 0 is false).
	unmutated := g.Mutate(draws, 0)
	if unmutated != g {
		t.Errorf("rate 0 should never mutate: got %+v", unmutated)
	}
}

func TestIntentRoundtripAllActions(t *testing.T) {
	actions := []ActionType{NoAction, Die, Predate, Replicate, Move, Idle}
	for _, a := range actions {
		word := EncodeIntent(a, PosX, 42)
		gotA, gotD, gotB := DecodeIntent(word)
		if gotA != a || gotD != PosX || gotB != 42 {
			t.Errorf("roundtrip(%v) = (%v,%v,%v)", a, gotA, gotD, gotB)
		}
	}
}

func TestIntentBidRange(t *testing.T) {
	word := EncodeIntent(Replicate, NegZ, 0)
	_, _, bid := DecodeIntent(word)
	if bid != 0 {
		t.Errorf("min bid = %d, want 0", bid)
	}

	word = EncodeIntent(Move, SelfDir, maxBid)
	a, d, b := DecodeIntent(word)
	if a != Move || d != SelfDir || b != maxBid {
		t.Errorf("max bid roundtrip = (%v,%v,%v)", a, d, b)
	}
}

func TestIntentDirectionAllValues(t *testing.T) {
	dirs := []Direction{PosX, NegX, PosY, NegY, PosZ, NegZ, SelfDir}
	for _, d := range dirs {
		word := EncodeIntent(Idle, d, 100)
		_, gotD, _ := DecodeIntent(word)
		if gotD != d {
			t.Errorf("direction roundtrip(%v) = %v", d, gotD)
		}
	}
}

func TestDirectionOppositeIsInvolution(t *testing.T) {
	for _, d := range []Direction{PosX, NegX, PosY, NegY, PosZ, NegZ} {
		if d.Opposite().Opposite() != d {
			t.Errorf("opposite(opposite(%v)) != %v", d, d)
		}
		if d.Opposite() == d {
			t.Errorf("opposite(%v) == %v", d, d)
		}
	}
}

func TestCommandRoundtrip(t *testing.T) {
	c := Command{Type: CommandApplyToxin, X: 1, Y: 2, Z: 3, Radius: 4, Param0: 128, Param1: 0}
	got := DecodeCommand(EncodeCommand(c))
	if got != c {
		t.Fatalf("command roundtrip mismatch: got %+v, want %+v", got, c)
	}
}

func TestCommandBufferRoundtrip(t *testing.T) {
	cmds := []Command{
		{Type: CommandPlaceVoxel, X: 1, Y: 1, Z: 1, Radius: 2, Param0: uint32(Wall)},
		{Type: CommandSeedProtocells, X: 5, Y: 5, Z: 5, Radius: 1, Param0: 100},
	}
	buf := EncodeCommandBuffer(cmds)
	got := DecodeCommandBuffer(buf)
	if len(got) != len(cmds) {
		t.Fatalf("got %d commands, want %d", len(got), len(cmds))
	}
	for i := range cmds {
		if got[i] != cmds[i] {
			t.Errorf("command %d: got %+v, want %+v", i, got[i], cmds[i])
		}
	}
}

func TestCommandBufferTruncatesAt64(t *testing.T) {
	cmds := make([]Command, 100)
	for i := range cmds {
		cmds[i] = Command{Type: CommandRemoveVoxel, X: uint32(i)}
	}
	buf := EncodeCommandBuffer(cmds)
	got := DecodeCommandBuffer(buf)
	if len(got) != MaxCommandsPerTick {
		t.Fatalf("got %d commands, want %d (the per-tick cap)", len(got), MaxCommandsPerTick)
	}
}

func TestParamsSerializeDeterministic(t *testing.T) {
	p := DefaultParams(128)
	p.TickCount = 42

	a := p.Serialize()
	b := p.Serialize()
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("serialize is not deterministic at byte %d", i)
		}
	}
}

func TestParamsRoundtrip(t *testing.T) {
	p := DefaultParams(64)
	p.TickCount = 17
	p.DiffusionRate = 0.2

	got := DeserializeParams(p.Serialize())
	if got != p {
		t.Fatalf("params roundtrip mismatch: got %+v, want %+v", got, p)
	}
}

func TestParamsClampDiffusionRate(t *testing.T) {
	p := DefaultParams(128)
	p.DiffusionRate = 0.9
	p.Clamp()
	if p.DiffusionRate != 0.25 {
		t.Errorf("diffusion rate = %v, want clamped to 0.25", p.DiffusionRate)
	}

	p.DiffusionRate = -1
	p.Clamp()
	if p.DiffusionRate != 0 {
		t.Errorf("diffusion rate = %v, want clamped to 0", p.DiffusionRate)
	}
}

func TestSaturatingArithmetic(t *testing.T) {
	if got := SaturatingSubU16(5, 20); got != 0 {
		t.Errorf("SaturatingSubU16(5,20) = %d, want 0", got)
	}
	if got := SaturatingAddU16(65530, 100, 65535); got != 65535 {
		t.Errorf("SaturatingAddU16(65530,100,65535) = %d, want 65535", got)
	}
	if got := SaturatingAddU16Age(0xFFFF); got != 0xFFFF {
		t.Errorf("age saturation failed: got %d", got)
	}
}
