package bus

import (
	"bytes"
	"testing"
)

func TestMarshalSLCAN(t *testing.T) {
	cases := []struct {
		id   uint32
		data []byte
		want string
	}{
		{0x1A0, []byte{0x3C, 0xB0}, "t1A023CB0\r"},
		{0x0AA, nil, "t0AA0\r"},
		{0x12345, []byte{0x01, 0x02}, "T000123452" + "0102\r"},
	}
	for _, tc := range cases {
		if got := marshalSLCAN(tc.id, tc.data); got != tc.want {
			t.Errorf("marshal(0x%X) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestParseSLCAN(t *testing.T) {
	f, err := parseSLCAN("t1A023CB0\r")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.ID != 0x1A0 || !bytes.Equal(f.Data, []byte{0x3C, 0xB0}) {
		t.Fatalf("frame = %+v", f)
	}

	ext, err := parseSLCAN("T0001234520102\r")
	if err != nil {
		t.Fatalf("parse extended: %v", err)
	}
	if ext.ID != 0x12345 || !bytes.Equal(ext.Data, []byte{0x01, 0x02}) {
		t.Fatalf("extended frame = %+v", ext)
	}
}

func TestParseSLCANRejectsGarbage(t *testing.T) {
	for _, line := range []string{"", "\r", "X123", "t1A0", "t1A09" + "00",
		"t1A02ZZZZ\r", "t1A0200\r"} {
		if _, err := parseSLCAN(line); err == nil {
			t.Errorf("parse(%q) accepted", line)
		}
	}
}

func TestSLCANRoundTrip(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x11, 0x22, 0x33}
	f, err := parseSLCAN(marshalSLCAN(0x24B, data))
	if err != nil {
		t.Fatalf("roundtrip: %v", err)
	}
	if f.ID != 0x24B || !bytes.Equal(f.Data, data) {
		t.Fatalf("roundtrip frame = %+v", f)
	}
}
