package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestUStringRoundTrip(t *testing.T) {
	units := []uint16{'v', 'o', 'x', 'e', 'l', 0x4e2d}
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := WriteUString(w, units); err != nil {
		t.Fatal(err)
	}
	r := NewReader(&buf)
	got, err := ReadUString(r, DefaultUStringBound)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(units) {
		t.Fatalf("got %v, want %v", got, units)
	}
	for i := range units {
		if got[i] != units[i] {
			t.Fatalf("got %v, want %v", got, units)
		}
	}
}

func TestUStringTooLong(t *testing.T) {
	units := make([]uint16, 10)
	for i := range units {
		units[i] = 'a'
	}
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := WriteUString(w, units); err != nil {
		t.Fatal(err)
	}
	r := NewReader(&buf)
	if _, err := ReadUString(r, 5); !errors.Is(err, ErrStringTooLong) {
		t.Fatalf("expected ErrStringTooLong, got %v", err)
	}
}

func TestJStringRoundTrip(t *testing.T) {
	units := []uint16{'c', 'h', 'a', 't'}
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := WriteJString(w, units); err != nil {
		t.Fatal(err)
	}
	r := NewReader(&buf)
	got, err := ReadJString(r)
	if err != nil {
		t.Fatal(err)
	}
	if UTF16ToGoString(got) != "chat" {
		t.Fatalf("got %q", UTF16ToGoString(got))
	}
}

func TestJStringExceedsBound(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	units := make([]uint16, MaxJStringBytes+1)
	for i := range units {
		units[i] = 'a'
	}
	if err := WriteJString(w, units); !errors.Is(err, ErrStringTooLong) {
		t.Fatalf("expected ErrStringTooLong on write, got %v", err)
	}
}

func TestUTF16ToGoString(t *testing.T) {
	got := UTF16ToGoString([]uint16{'o', 'k'})
	if got != "ok" {
		t.Fatalf("got %q", got)
	}
}
