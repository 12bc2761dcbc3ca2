package vectorstore

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Vectors are stored as little-endian float32 blobs.

func encodeVector(vector []float32) []byte {
	buf := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 4", len(blob))
	}
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vector, nil
}

// cosineDistance returns 1 minus cosine similarity. The embedding
// models in use are trained for cosine similarity, so this is the
// index's documented metric. A zero-norm vector is maximally distant,
// as are vectors of different lengths; Open rejects mixed-dimension
// collections before queries can see them.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return 1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
