package utils

import "encoding/binary"

// Little-endian fixed-width codec. All wire formats in this module are
// little-endian regardless of host byte order.

func U16ToLE(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
func U16FromLE(b []byte) uint16  { return binary.LittleEndian.Uint16(b) }
func U32ToLE(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func U32FromLE(b []byte) uint32  { return binary.LittleEndian.Uint32(b) }
func U64ToLE(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }
func U64FromLE(b []byte) uint64  { return binary.LittleEndian.Uint64(b) }

// PackedLen returns the number of bytes needed to hold count values of
// bits bits each.
func PackedLen(count, bits int) int {
	return (count*bits + 7) / 8
}

// PackBits packs the low bits of each value into a little-endian bit string.
// Bit j of value i lands at bit position i*bits+j of the output.
func PackBits(values []uint16, bits int) []byte {
	out := make([]byte, PackedLen(len(values), bits))
	mask := uint32(1)<<uint(bits) - 1
	var acc uint32
	accBits := 0
	pos := 0
	for _, v := range values {
		acc |= (uint32(v) & mask) << uint(accBits)
		accBits += bits
		for accBits >= 8 {
			out[pos] = byte(acc)
			pos++
			acc >>= 8
			accBits -= 8
		}
	}
	if accBits > 0 {
		out[pos] = byte(acc)
	}
	return out
}

// UnpackBits is the inverse of PackBits. data must hold at least
// PackedLen(count, bits) bytes; bits must be at most 16.
func UnpackBits(data []byte, count, bits int) []uint16 {
	out := make([]uint16, count)
	mask := uint32(1)<<uint(bits) - 1
	var acc uint32
	accBits := 0
	pos := 0
	for i := range out {
		for accBits < bits {
			acc |= uint32(data[pos]) << uint(accBits)
			pos++
			accBits += 8
		}
		out[i] = uint16(acc & mask)
		acc >>= uint(bits)
		accBits -= bits
	}
	return out
}
