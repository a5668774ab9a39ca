package common

// LosslessBits and LosslessValues form the Huffman table written by the
// lossless encoders. It covers difference categories 0 through 16, which
// is every category a 16-bit lossless scan can produce.
var (
	LosslessBits = [16]int{
		0, 2, 3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0,
	}
	LosslessValues = []byte{
		0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16,
	}
)

// BuildStandardHuffmanTable builds a Huffman table from a fixed definition
func BuildStandardHuffmanTable(bits [16]int, values []byte) *HuffmanTable {
	table := &HuffmanTable{
		Bits:   bits,
		Values: values,
	}
	_ = table.Build() // fixed tables are valid
	return table
}
