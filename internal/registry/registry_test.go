package registry

import (
	"reflect"
	"testing"
	"unsafe"
)

type position struct {
	X, Y float32
}

type tag struct{}

type withSlice struct {
	Items []int
}

func TestRegisterAssignsSequentialIDs(t *testing.T) {
	r := New()
	d1, err := Register[position](r)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	d2, err := Register[tag](r)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if d1.ID == d2.ID {
		t.Fatalf("expected distinct ids, got %d and %d", d1.ID, d2.ID)
	}
	if d1.ID != 0 || d2.ID != 1 {
		t.Fatalf("expected ids 0 and 1, got %d and %d", d1.ID, d2.ID)
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	r := New()
	d1, _ := Register[position](r)
	d2, _ := Register[position](r)
	if d1 != d2 {
		t.Fatalf("expected the same descriptor pointer on repeat registration")
	}
}

func TestRegisterFillsSizeAndAlignment(t *testing.T) {
	r := New()
	d, _ := Register[position](r)
	if d.Size != unsafe.Sizeof(position{}) {
		t.Fatalf("Size = %d, want %d", d.Size, unsafe.Sizeof(position{}))
	}
	if d.Alignment != uintptr(unsafe.Alignof(position{})) {
		t.Fatalf("Alignment = %d, want %d", d.Alignment, unsafe.Alignof(position{}))
	}
}

func TestEmptyTypeDetection(t *testing.T) {
	r := New()
	d, _ := Register[tag](r)
	if !d.EmptyType {
		t.Fatalf("tag{} should be detected as an empty type")
	}
	if d.Size != 0 {
		t.Fatalf("tag{} Size = %d, want 0", d.Size)
	}
}

func TestTriviallyCopyableDetection(t *testing.T) {
	r := New()
	trivial, _ := Register[position](r)
	if !trivial.TriviallyCopyable {
		t.Fatalf("position should be trivially copyable")
	}
	nonTrivial, _ := Register[withSlice](r)
	if nonTrivial.TriviallyCopyable {
		t.Fatalf("withSlice should not be trivially copyable")
	}
}

func TestLifecycleRoundTripTrivialType(t *testing.T) {
	r := New()
	d, _ := Register[position](r)

	buf := make([]byte, d.Size)
	ptr := unsafe.Pointer(&buf[0])
	d.DefaultConstruct(ptr)
	(*position)(ptr).X = 42

	dstBuf := make([]byte, d.Size)
	dstPtr := unsafe.Pointer(&dstBuf[0])
	d.MoveConstruct(dstPtr, ptr)

	if (*position)(dstPtr).X != 42 {
		t.Fatalf("MoveConstruct did not carry the value over")
	}
}

func TestLifecycleRoundTripNonTrivialType(t *testing.T) {
	r := New()
	d, _ := Register[withSlice](r)

	buf := make([]byte, d.Size)
	ptr := unsafe.Pointer(&buf[0])
	d.DefaultConstruct(ptr)
	(*withSlice)(ptr).Items = []int{1, 2, 3}

	dstBuf := make([]byte, d.Size)
	dstPtr := unsafe.Pointer(&dstBuf[0])
	d.MoveConstruct(dstPtr, ptr)

	got := (*withSlice)(dstPtr).Items
	if len(got) != 3 || got[1] != 2 {
		t.Fatalf("MoveConstruct did not carry the slice over, got %v", got)
	}
}

func TestLookupHashRoundTrips(t *testing.T) {
	r := New()
	d, _ := Register[position](r)
	id, ok := r.LookupHash(d.Hash)
	if !ok || id != d.ID {
		t.Fatalf("LookupHash(%d) = (%d, %v), want (%d, true)", d.Hash, id, ok, d.ID)
	}
}

// distinctArrayType returns a unique reflect.Type for each i, so the
// registration-cap test can fill the registry without declaring 64
// named Go types by hand.
func distinctArrayType(i int) reflect.Type {
	return reflect.ArrayOf(i+1, reflect.TypeOf(byte(0)))
}

func TestRegistrationCapEnforced(t *testing.T) {
	r := New()
	for i := 0; i < MaxComponents; i++ {
		if _, err := RegisterType(r, distinctArrayType(i)); err != nil {
			t.Fatalf("registration %d: unexpected error: %v", i, err)
		}
	}
	if _, err := Register[position](r); err == nil {
		t.Fatalf("expected an error once MaxComponents is exceeded")
	}
}
