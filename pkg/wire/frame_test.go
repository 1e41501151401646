package wire

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	in := NewURLPush("/base/foo?a=1#tab=2")

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestDecodeRejectsUnknownOp(t *testing.T) {
	_, err := Decode([]byte(`{"op":"eval","url":"alert(1)"}`))
	if !errors.Is(err, ErrUnknownOp) {
		t.Fatalf("err = %v, want ErrUnknownOp", err)
	}
}

func TestDecodeRejectsEmpty(t *testing.T) {
	_, err := Decode(nil)
	if !errors.Is(err, ErrEmptyFrame) {
		t.Fatalf("err = %v, want ErrEmptyFrame", err)
	}
}

func TestDecodeRejectsOversized(t *testing.T) {
	big := `{"op":"location","url":"/` + strings.Repeat("x", MaxFrameSize) + `"}`
	_, err := Decode([]byte(big))
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("err = %v, want ErrFrameTooLarge", err)
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	if _, err := Decode([]byte(`{"op":`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestHashFrameClearsWithEmptyValue(t *testing.T) {
	data, err := Encode(NewHash(""))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	f, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.Op != OpHash || f.Hash != "" {
		t.Errorf("frame = %+v, want empty hash frame", f)
	}
}
