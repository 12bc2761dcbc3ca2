package vectorstore

import (
	"math"
	"reflect"
	"testing"
)

func TestVectorEncodeDecode(t *testing.T) {
	in := []float32{0.25, -1.5, 3.75, 0}
	out, err := decodeVector(encodeVector(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch: %v != %v", in, out)
	}
}

func TestDecodeVectorBadLength(t *testing.T) {
	if _, err := decodeVector([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for truncated blob")
	}
}

func TestCosineDistance(t *testing.T) {
	if d := cosineDistance([]float32{1, 0}, []float32{1, 0}); math.Abs(d) > 1e-9 {
		t.Fatalf("identical vectors should have distance 0, got %v", d)
	}
	if d := cosineDistance([]float32{1, 0}, []float32{0, 1}); math.Abs(d-1) > 1e-9 {
		t.Fatalf("orthogonal vectors should have distance 1, got %v", d)
	}
	if d := cosineDistance([]float32{0, 0}, []float32{1, 0}); d != 1 {
		t.Fatalf("zero vector should be maximally distant, got %v", d)
	}
	if d := cosineDistance([]float32{1, 0, 0, 0}, []float32{1, 0, 0}); d != 1 {
		t.Fatalf("mismatched lengths should be maximally distant, got %v", d)
	}
}
