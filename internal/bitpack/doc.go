// Package bitpack owns bit-level packing primitives.
//
// Ownership boundary:
// - bit-writer/bit-reader primitives over caller-supplied byte buffers
// - primitive codecs (fixed and arbitrary width integers, bool)
// - composite codecs (fixed-size arrays, tuples)
//
// Bit offsets are counted MSB-first: bit 0 is the most significant bit of
// buf[0]. Packing a value of width W at offset O touches exactly the bits
// [O, O+W) and nothing else.
package bitpack
