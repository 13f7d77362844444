package hashing

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
)

// Binary layout (little endian):
//
//	header:  magic "IMHT" | version u16 | scheme u8 | compression u8 | raw length u32 | stored length u32 | crc32c u32
//	payload: seed u64 | bundles u32 | bits u32 | functions u32 | width f64 | families u32
//	family:  dim u32 | planes u32 | offsets u32 | planes*dim f32 | offsets f32
//
// Families are written in ascending dimension order so the payload, and
// therefore the fingerprint, is canonical. The checksum covers the stored
// (possibly compressed) bytes.
const (
	formatMagic   = "IMHT"
	formatVersion = 2
	headerSize    = 4 + 2 + 1 + 1 + 4 + 4 + 4
)

// Marshal serializes t, compressing the payload with c.
func Marshal(t *Table, c Compression) ([]byte, error) {
	payload, err := encodePayload(t)
	if err != nil {
		return nil, err
	}
	stored, used, err := compress(payload, c)
	if err != nil {
		return nil, err
	}

	out := make([]byte, headerSize, headerSize+len(stored))
	copy(out, formatMagic)
	binary.LittleEndian.PutUint16(out[4:], formatVersion)
	out[6] = byte(t.scheme)
	out[7] = byte(used)
	binary.LittleEndian.PutUint32(out[8:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(out[12:], uint32(len(stored)))
	binary.LittleEndian.PutUint32(out[16:], checksum(stored))
	return append(out, stored...), nil
}

// Unmarshal parses a table produced by Marshal.
func Unmarshal(data []byte) (*Table, error) {
	if len(data) < headerSize || string(data[:4]) != formatMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorruptTable)
	}
	if v := binary.LittleEndian.Uint16(data[4:]); v != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptTable, v)
	}
	scheme := Scheme(data[6])
	if scheme != SchemeBitSampling && scheme != SchemeLSH {
		return nil, fmt.Errorf("%w: %w: %d", ErrCorruptTable, ErrUnknownScheme, data[6])
	}
	rawLen := int(binary.LittleEndian.Uint32(data[8:]))
	storedLen := int(binary.LittleEndian.Uint32(data[12:]))
	if len(data)-headerSize != storedLen {
		return nil, fmt.Errorf("%w: stored length %d, have %d bytes", ErrCorruptTable, storedLen, len(data)-headerSize)
	}

	if sum := checksum(data[headerSize:]); sum != binary.LittleEndian.Uint32(data[16:]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptTable)
	}

	payload, err := decompress(data[headerSize:], Compression(data[7]), rawLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptTable, err)
	}

	t, err := decodePayload(scheme, payload)
	if err != nil {
		return nil, err
	}
	t.fingerprint = fingerprint(payload)
	return t, nil
}

func fingerprint(payload []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(payload)
	return h.Sum64()
}

func encodePayload(t *Table) ([]byte, error) {
	dims := make([]int, 0, len(t.families))
	for d := range t.families {
		dims = append(dims, d)
	}
	sort.Ints(dims)

	buf := make([]byte, 0, 36)
	buf = binary.LittleEndian.AppendUint64(buf, t.seed)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(t.params.Bundles))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(t.params.Bits))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(t.params.Functions))
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(t.params.Width))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(dims)))

	for _, d := range dims {
		fam := t.families[d]
		buf = binary.LittleEndian.AppendUint32(buf, uint32(fam.Dim))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(fam.Planes)))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(fam.Offsets)))
		for _, plane := range fam.Planes {
			if len(plane) != fam.Dim {
				return nil, fmt.Errorf("%w: plane of length %d in %d-dimensional family", ErrCorruptTable, len(plane), fam.Dim)
			}
			for _, v := range plane {
				buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
			}
		}
		for _, v := range fam.Offsets {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
		}
	}
	return buf, nil
}

type payloadReader struct {
	data []byte
	err  error
}

func (r *payloadReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.data) < n {
		r.err = fmt.Errorf("%w: truncated payload", ErrCorruptTable)
		return nil
	}
	b := r.data[:n]
	r.data = r.data[n:]
	return b
}

func (r *payloadReader) u32() uint32 {
	if b := r.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *payloadReader) u64() uint64 {
	if b := r.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (r *payloadReader) f32s(n int) []float32 {
	b := r.take(4 * n)
	if b == nil {
		return nil
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

func decodePayload(scheme Scheme, payload []byte) (*Table, error) {
	r := &payloadReader{data: payload}
	seed := r.u64()
	params := Params{
		Bundles:   int(r.u32()),
		Bits:      int(r.u32()),
		Functions: int(r.u32()),
		Width:     math.Float64frombits(r.u64()),
	}
	n := int(r.u32())
	if r.err != nil {
		return nil, r.err
	}
	if err := params.validate(scheme); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptTable, err)
	}

	want := params.Bundles * params.Bits
	wantOffsets := 0
	if scheme == SchemeLSH {
		want, wantOffsets = params.Functions, params.Functions
	}

	families := make(map[int]*Family, n)
	for range n {
		dim := int(r.u32())
		planes := int(r.u32())
		offsets := int(r.u32())
		if r.err != nil {
			return nil, r.err
		}
		if dim <= 0 || planes != want || offsets != wantOffsets {
			return nil, fmt.Errorf("%w: family dim=%d planes=%d offsets=%d", ErrCorruptTable, dim, planes, offsets)
		}
		if len(r.data) < 4*(planes*dim+offsets) {
			return nil, fmt.Errorf("%w: truncated payload", ErrCorruptTable)
		}
		fam := &Family{Dim: dim, Planes: make([][]float32, planes)}
		for i := range fam.Planes {
			fam.Planes[i] = r.f32s(dim)
		}
		if offsets > 0 {
			fam.Offsets = r.f32s(offsets)
		}
		if r.err != nil {
			return nil, r.err
		}
		families[dim] = fam
	}
	if len(r.data) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptTable, len(r.data))
	}

	return &Table{
		scheme:   scheme,
		params:   params,
		seed:     seed,
		families: families,
	}, nil
}
