package fusion

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/roomcraft/reco/internal/domain"
)

// --- Mocks ---

type mockTextEmbedder struct {
	vec      []float32
	err      error
	lastText string
	calls    int
}

func (m *mockTextEmbedder) EmbedText(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	m.lastText = text
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type mockImageEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockImageEmbedder) EmbedImage(_ context.Context, _ []byte) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

func magnitude(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// --- Tests ---

func TestFuse_BothModalities_UnitLength(t *testing.T) {
	texts := &mockTextEmbedder{vec: []float32{1, 0, 0}}
	images := &mockImageEmbedder{vec: []float32{0, 1, 0}}
	svc := New(texts, images)

	fused, err := svc.Fuse(context.Background(), "gray sofa", []byte("img"), 0.7, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(magnitude(fused)-1) > 1e-6 {
		t.Errorf("fused vector not unit length: %g", magnitude(fused))
	}
}

func TestFuse_WeightMonotonicity(t *testing.T) {
	imgVec := []float32{0, 1, 0}
	texts := &mockTextEmbedder{vec: []float32{1, 0, 0}}
	images := &mockImageEmbedder{vec: imgVec}
	svc := New(texts, images)

	var prev float64 = -1
	for _, wImage := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
		fused, err := svc.Fuse(context.Background(), "q", []byte("img"), wImage, 1-wImage)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sim := dot(fused, imgVec)
		if sim <= prev {
			t.Errorf("similarity to image vector did not increase at w_image=%g: %g <= %g", wImage, sim, prev)
		}
		prev = sim
	}
}

func TestFuse_Deterministic(t *testing.T) {
	texts := &mockTextEmbedder{vec: []float32{0.6, 0.8, 0}}
	images := &mockImageEmbedder{vec: []float32{0, 0.8, 0.6}}
	svc := New(texts, images)

	a, err := svc.Fuse(context.Background(), "q", []byte("img"), 0.7, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.Fuse(context.Background(), "q", []byte("img"), 0.7, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("fusion not deterministic: %v vs %v", a, b)
		}
	}
}

func TestFuse_TextOnly(t *testing.T) {
	texts := &mockTextEmbedder{vec: []float32{1, 0, 0}}
	images := &mockImageEmbedder{vec: []float32{0, 1, 0}}
	svc := New(texts, images)

	fused, err := svc.Fuse(context.Background(), "sofa", nil, 0.7, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if images.calls != 0 {
		t.Error("image embedder should not be called without an image")
	}
	if dot(fused, texts.vec) != 1 {
		t.Errorf("expected text vector unchanged, got %v", fused)
	}
}

func TestFuse_ImageFailureDegradesToText(t *testing.T) {
	texts := &mockTextEmbedder{vec: []float32{1, 0, 0}}
	images := &mockImageEmbedder{err: errors.New("corrupt image")}
	svc := New(texts, images)

	fused, err := svc.Fuse(context.Background(), "sofa", []byte("bad"), 0.7, 0.3)
	if err != nil {
		t.Fatalf("image failure must not fail the request: %v", err)
	}
	if dot(fused, texts.vec) != 1 {
		t.Errorf("expected text vector, got %v", fused)
	}
}

func TestFuse_NothingUsable_NeutralFallback(t *testing.T) {
	texts := &mockTextEmbedder{vec: []float32{0, 0, 1}}
	images := &mockImageEmbedder{err: errors.New("corrupt image")}
	svc := New(texts, images)

	fused, err := svc.Fuse(context.Background(), "", []byte("bad"), 0.7, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if texts.lastText != "furniture" {
		t.Errorf("expected neutral fallback query, got %q", texts.lastText)
	}
	if len(fused) != 3 {
		t.Errorf("expected neutral vector, got %v", fused)
	}
}

func TestFuse_TextFailureUsesImage(t *testing.T) {
	texts := &mockTextEmbedder{err: errors.New("provider down")}
	images := &mockImageEmbedder{vec: []float32{0, 1, 0}}
	svc := New(texts, images)

	fused, err := svc.Fuse(context.Background(), "sofa", []byte("img"), 0.7, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dot(fused, images.vec) != 1 {
		t.Errorf("expected image vector, got %v", fused)
	}
}

func TestFuse_TextFailureWithoutImage_Errors(t *testing.T) {
	texts := &mockTextEmbedder{err: errors.New("provider down")}
	images := &mockImageEmbedder{}
	svc := New(texts, images)

	if _, err := svc.Fuse(context.Background(), "sofa", nil, 0.7, 0.3); err == nil {
		t.Fatal("expected error when no modality can be embedded")
	}
}
