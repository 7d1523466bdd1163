package filter

import (
	metro "github.com/dgryski/go-metro"
	"github.com/zeebo/xxh3"
	"github.com/zhenjl/cityhash"
)

// seeds are fixed so derived positions survive a process restart
const (
	metroSeed uint64 = 0x9ae16a3b
	citySeed  uint64 = 0xc3a5c85c
)

type Hash func(data []byte, m uint64, k int) []int

// DoubleHash splits a 64-bit hash into two 32-bit halves and strides them
// to derive k near-independent indexes in [0, m).
func DoubleHash(hash uint64, m uint64, k int) []int {
	hashedIdx := make([]int, k)
	h1 := uint64(uint32(hash))
	h2 := uint64(uint32(hash >> 32))

	for i := 0; i < k; i++ {
		hashedIdx[i] = int((h1 + uint64(i)*h2) % m)
	}
	return hashedIdx
}

func Metro(data []byte, m uint64, k int) []int {
	return DoubleHash(metro.Hash64(data, metroSeed), m, k)
}

// XXH3 strides both halves of a 128-bit hash directly.
func XXH3(data []byte, m uint64, k int) []int {
	hash := xxh3.Hash128(data)
	hashedIdx := make([]int, k)
	h1 := hash.Lo
	h2 := hash.Hi

	for i := 0; i < k; i++ {
		hashedIdx[i] = int((h1 + uint64(i)*h2) % m)
	}
	return hashedIdx
}

func City(data []byte, m uint64, k int) []int {
	return DoubleHash(cityhash.CityHash64WithSeed(data, uint32(len(data)), citySeed), m, k)
}
