package shuffle

import (
	"math/rand/v2"
	"sort"

	"github.com/gammazero/deque"
	"github.com/rs/zerolog"
)

// Sequence 是调用方持有的候选序列。Store 只按下标读取，不复制也不修改。
type Sequence[T any] interface {
	Len() int
	At(i int) T
}

// Store 按 key 保存剩余的洗牌下标（bag）。
// bag 为空与 key 不存在等价，下次抽取时会重新洗牌。
type Store struct {
	state       map[string]*deque.Deque[int]
	rng         *rand.Rand
	filename    string
	log         zerolog.Logger
	compression CompressionType
}

// New 创建一个空的 Store，没有关联文件，随机源独立播种
func New(opts ...Option) *Store {
	s := &Store{
		state:       make(map[string]*deque.Deque[int]),
		log:         zerolog.Nop(),
		compression: CompressionNone,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = newRand()
	}
	return s
}

// Pick 从 key 对应的 bag 中取出下一个下标，n 为调用方序列当前的长度。
//
// bag 为空或不存在时先洗牌生成 [0, n) 的新排列。取出的下标如果已经超出 n
// （序列变短，或状态文件被手工修改），则直接返回 [0, n) 内的随机下标，bag 不再改动。
// n <= 0 时返回 ErrEmptySequence，且不会创建或修改任何 bag。
func (s *Store) Pick(key string, n int) (int, error) {
	if n <= 0 {
		return 0, ErrEmptySequence
	}

	bag := s.state[key]
	if bag == nil || bag.Len() == 0 {
		bag = s.reshuffle(key, n)
	}

	idx := bag.PopFront()
	if idx < 0 || idx >= n {
		s.log.Debug().
			Str("key", key).
			Int("index", idx).
			Int("length", n).
			Msg("stale index, using random fallback")
		return randomIntn(s.rng, n), nil
	}
	return idx, nil
}

// reshuffle 用新的随机排列替换 key 的 bag
func (s *Store) reshuffle(key string, n int) *deque.Deque[int] {
	bag := newBag(shuffledIndices(s.rng, n))
	s.state[key] = bag
	s.log.Debug().Str("key", key).Int("length", n).Msg("reshuffled bag")
	return bag
}

func newBag(indices []int) *deque.Deque[int] {
	bag := new(deque.Deque[int])
	for _, idx := range indices {
		bag.PushBack(idx)
	}
	return bag
}

// Choice 从 seq 中抽取一个元素，同一个 key 在 bag 抽完之前不会重复
func Choice[T any](s *Store, key string, seq []T) (T, error) {
	var zero T
	idx, err := s.Pick(key, len(seq))
	if err != nil {
		return zero, err
	}
	return seq[idx], nil
}

// ChoiceFrom 与 Choice 相同，但接受任意 Sequence
func ChoiceFrom[T any](s *Store, key string, seq Sequence[T]) (T, error) {
	var zero T
	idx, err := s.Pick(key, seq.Len())
	if err != nil {
		return zero, err
	}
	return seq.At(idx), nil
}

// Filename 返回最近一次 Load/Save 使用的路径
func (s *Store) Filename() string {
	return s.filename
}

// Keys 返回所有 key，按字典序排列
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.state))
	for k := range s.state {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Remaining 返回 key 对应 bag 中剩余的下标数量
func (s *Store) Remaining(key string) int {
	bag, ok := s.state[key]
	if !ok {
		return 0
	}
	return bag.Len()
}

// Forget 删除 key 的 bag，下次抽取会重新洗牌
func (s *Store) Forget(key string) {
	delete(s.state, key)
}

// Snapshot 返回当前状态的深拷贝，顺序即抽取顺序
func (s *Store) Snapshot() map[string][]int {
	out := make(map[string][]int, len(s.state))
	for k, bag := range s.state {
		indices := make([]int, bag.Len())
		for i := range indices {
			indices[i] = bag.At(i)
		}
		out[k] = indices
	}
	return out
}

// restore 整体替换内存状态
func (s *Store) restore(state map[string][]int) {
	next := make(map[string]*deque.Deque[int], len(state))
	for k, indices := range state {
		next[k] = newBag(indices)
	}
	s.state = next
}
