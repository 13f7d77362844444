package hashing

import "hash/crc32"

// Castagnoli is hardware accelerated on amd64 and arm64.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

func checksum(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}
