package schemaregistry

import (
	"bytes"
	"errors"
	"testing"
)

func TestWirePrefix_RoundTrip(t *testing.T) {
	byt := append(encodePrefix(1042), []byte(`payload`)...)

	id, payload, err := decodePrefix(byt)
	if err != nil {
		t.Fatal(err)
	}

	if id != 1042 {
		t.Errorf(`need 1042, have %d`, id)
	}

	if !bytes.Equal(payload, []byte(`payload`)) {
		t.Errorf(`need payload, have %s`, payload)
	}
}

func TestWirePrefix_Layout(t *testing.T) {
	byt := encodePrefix(1)

	if !bytes.Equal(byt, []byte{0x00, 0x00, 0x00, 0x00, 0x01}) {
		t.Errorf(`need [00 00 00 00 01], have %x`, byt)
	}
}

func TestWirePrefix_BadMagicByte(t *testing.T) {
	byt := encodePrefix(1)
	byt[0] = 0x1

	if _, _, err := decodePrefix(byt); !errors.Is(err, ErrInvalidWireFormat) {
		t.Errorf(`need ErrInvalidWireFormat, have %v`, err)
	}
}

func TestWirePrefix_Truncated(t *testing.T) {
	for _, byt := range [][]byte{nil, {}, {0x00}, {0x00, 0x00, 0x00, 0x01}} {
		if _, _, err := decodePrefix(byt); !errors.Is(err, ErrInvalidWireFormat) {
			t.Errorf(`need ErrInvalidWireFormat for %x, have %v`, byt, err)
		}
	}
}
