/**
 * Copyright 2024 OpenStream Engineering.
 * All rights reserved.
 */

package schemaregistry

import (
	"encoding/binary"
	"fmt"
)

const (
	magicByte      byte = 0x0
	wirePrefixSize      = 5
)

// encodePrefix builds the five byte wire header placed before every payload.
//
//	╔════════════════════╤════════════════════╤════════════════════════╗
//	║ magic byte(1 byte) │ schema id(4 bytes) │ format encoded message ║
//	╚════════════════════╧════════════════════╧════════════════════════╝
func encodePrefix(id int) []byte {
	byt := make([]byte, wirePrefixSize)
	byt[0] = magicByte
	binary.BigEndian.PutUint32(byt[1:], uint32(id))
	return byt
}

// decodePrefix validates the wire header and returns the schema id and the
// remaining payload. Anything shorter than five bytes or not starting with
// the magic byte fails with ErrInvalidWireFormat.
func decodePrefix(byt []byte) (int, []byte, error) {
	if len(byt) < wirePrefixSize {
		return 0, nil, fmt.Errorf(`%w: message length [%d] is shorter than the wire header`,
			ErrInvalidWireFormat, len(byt))
	}

	if byt[0] != magicByte {
		return 0, nil, fmt.Errorf(`%w: unexpected magic byte [%#x]`, ErrInvalidWireFormat, byt[0])
	}

	return int(binary.BigEndian.Uint32(byt[1:wirePrefixSize])), byt[wirePrefixSize:], nil
}
