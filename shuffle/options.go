package shuffle

import (
	"math/rand/v2"

	"github.com/rs/zerolog"
)

// Option 配置 Store
type Option func(*Store)

// WithSeed 使用固定种子，便于复现抽取顺序
func WithSeed(seed uint64) Option {
	return func(s *Store) {
		s.rng = seededRand(seed)
	}
}

// WithRand 使用调用方提供的随机源。Store 之后独占该随机源。
func WithRand(rng *rand.Rand) Option {
	return func(s *Store) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithLogger 设置日志。默认不输出任何日志。
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// WithCompression 设置保存时使用的压缩算法，加载时会自动识别
func WithCompression(compressionType CompressionType) Option {
	return func(s *Store) {
		s.compression = compressionType
	}
}
