package corpus

import (
	"bytes"

	"github.com/standardbeagle/classgrep/internal/types"
)

var binarySignatures = [][]byte{
	{0x1F, 0x8B},             // gzip
	{0x50, 0x4B, 0x03, 0x04}, // ZIP / JAR
	{0x50, 0x4B, 0x05, 0x06}, // empty ZIP
	{0x89, 0x50, 0x4E, 0x47}, // PNG
	{0xFF, 0xD8, 0xFF},       // JPEG
	{0x25, 0x50, 0x44, 0x46}, // PDF
	{0x7F, 0x45, 0x4C, 0x46}, // ELF
	{0x4D, 0x5A},             // DOS/Windows executable
	{0xCA, 0xFE, 0xBA, 0xBE}, // Java class file / Mach-O fat binary
	{0x64, 0x65, 0x78, 0x0A}, // Android DEX
}

// IsBinary checks the first bytes of content for binary signatures,
// null bytes and control characters.
func IsBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}

	checkLen := types.BinaryPreCheckBytes
	if len(content) < checkLen {
		checkLen = len(content)
	}
	sample := content[:checkLen]

	for _, sig := range binarySignatures {
		if bytes.HasPrefix(sample, sig) {
			return true
		}
	}

	nullBytes := 0
	nonPrintable := 0
	for _, b := range sample {
		if b == 0 {
			nullBytes++
		}
		// High bytes are left alone so UTF-8 text is not flagged
		if b < 0x20 && b != 0x09 && b != 0x0A && b != 0x0D {
			nonPrintable++
		}
	}

	// More than 1% null bytes, or 30% control characters
	return nullBytes > len(sample)/100 || nonPrintable > len(sample)*30/100
}
