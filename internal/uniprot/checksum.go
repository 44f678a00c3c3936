package uniprot

import (
	"fmt"
	"hash/crc64"
)

var isoTable = crc64.MakeTable(crc64.ISO)

// CRC64 computes the SWISS-PROT CRC64 of seq as 16 upper-case hex digits.
// Unlike hash/crc64 it starts from zero and applies no final inversion.
func CRC64(seq string) string {
	var crc uint64
	for i := 0; i < len(seq); i++ {
		crc = isoTable[byte(crc)^seq[i]] ^ (crc >> 8)
	}
	return fmt.Sprintf("%016X", crc)
}
