package shuffle

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// newRand 返回用 crypto/rand 播种的随机源，每个 Store 独占一个
func newRand() *rand.Rand {
	var seed [16]byte
	_, _ = crand.Read(seed[:])
	return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:])))
}

// seededRand 返回固定种子的随机源，相同种子产生相同的抽取顺序
func seededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// randomIntn 返回 [0, n) 范围内的随机整数
func randomIntn(rng *rand.Rand, n int) int {
	if n <= 0 {
		return 0
	}
	return rng.IntN(n)
}

// shuffledIndices 返回 [0, n) 的一个随机排列
func shuffledIndices(rng *rand.Rand, n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	// Fisher-Yates
	for i := n - 1; i > 0; i-- {
		j := randomIntn(rng, i+1)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx
}
