package embedder

import (
	"context"
	"hash/fnv"
	"math"
)

// deterministic is a hash-seeded pseudo-random unit vector embedder used
// as the startup fallback and in tests, per spec.md §4.3(c). Grounded on
// the teacher's deterministicEmbedder: 3-gram byte hashing into a
// fixed-size vector, optionally L2-normalized.
type deterministic struct {
	dim       int
	normalize bool
	seed      uint64
}

// NewDeterministic constructs the stub embedder. dim defaults to 384 if
// non-positive, matching spec.md's default deployment dimension.
func NewDeterministic(dim int, normalize bool, seed uint64) Embedder {
	if dim <= 0 {
		dim = 384
	}
	return &deterministic{dim: dim, normalize: normalize, seed: seed}
}

func (d *deterministic) Name() string                { return "stub" }
func (d *deterministic) Dimension() int               { return d.dim }
func (d *deterministic) Ping(_ context.Context) error { return nil }

func (d *deterministic) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = d.embedOne(t)
	}
	return out, nil
}

func (d *deterministic) embedOne(s string) []float32 {
	v := make([]float32, d.dim)
	if len(s) == 0 {
		return v
	}
	b := []byte(s)
	if len(b) < 3 {
		addGram(d.seed, b, v)
	} else {
		for i := 0; i <= len(b)-3; i++ {
			addGram(d.seed, b[i:i+3], v)
		}
	}
	if d.normalize {
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		if sum > 0 {
			inv := float32(1.0 / math.Sqrt(sum))
			for i := range v {
				v[i] *= inv
			}
		}
	}
	return v
}

func addGram(seed uint64, gram []byte, v []float32) {
	h := fnv.New64a()
	if seed != 0 {
		var tmp [8]byte
		for i := 0; i < 8; i++ {
			tmp[i] = byte(seed >> (8 * i))
		}
		_, _ = h.Write(tmp[:])
	}
	_, _ = h.Write(gram)
	hv := h.Sum64()
	idx := int(hv % uint64(len(v)))
	w := float32(int32(hv>>32)) / float32(1<<31)
	v[idx] += w
}
