package extended

// flipSign moves samples holding the low bitsStored bits of a two's
// complement value into the unsigned range the DCT level shift expects,
// by adding 2^(bitsStored-1). Applying it twice restores the input.
func flipSign(samples []int, bitsStored int) {
	sign := 1 << uint(bitsStored-1)
	for i := range samples {
		samples[i] ^= sign
	}
}
