package shuffle

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zeebo/assert"
)

func readJSON(t *testing.T, path string) map[string][]int {
	t.Helper()
	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	var out map[string][]int
	assert.NoError(t, json.Unmarshal(data, &out))
	return out
}

func uniqueCount(indices []int) int {
	seen := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		seen[idx] = struct{}{}
	}
	return len(seen)
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	assert.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	s := New()
	assert.NoError(t, s.Load(path))
	assert.Equal(t, 0, len(s.state))
	assert.Equal(t, path, s.Filename())

	_, err := Choice(s, "foo", intRange(300))
	assert.NoError(t, err)
	_, err = Choice(s, "bar", intRange(55))
	assert.NoError(t, err)
	assert.NoError(t, s.Save(""))

	// 直接检查文件内容
	j := readJSON(t, path)
	assert.Equal(t, 2, len(j))
	assert.Equal(t, 299, len(j["foo"]))
	assert.Equal(t, 299, uniqueCount(j["foo"]))
	assert.Equal(t, s.Snapshot()["foo"], j["foo"])
	assert.Equal(t, 54, len(j["bar"]))
	assert.Equal(t, 54, uniqueCount(j["bar"]))
	assert.Equal(t, s.Snapshot()["bar"], j["bar"])

	// 新实例加载后状态一致
	u := New()
	assert.NoError(t, u.Load(path))
	assert.Equal(t, s.Snapshot(), u.Snapshot())

	// 抽完后保存，空 bag 依然保留
	for i := 0; i < 299; i++ {
		_, err := Choice(u, "foo", intRange(300))
		assert.NoError(t, err)
	}
	for i := 0; i < 54; i++ {
		_, err := Choice(u, "bar", intRange(55))
		assert.NoError(t, err)
	}
	assert.Equal(t, 0, u.Remaining("foo"))
	assert.Equal(t, 0, u.Remaining("bar"))
	assert.NoError(t, u.Save(""))

	j = readJSON(t, path)
	assert.Equal(t, 2, len(j))
	assert.Equal(t, 0, len(j["foo"]))
	assert.Equal(t, 0, len(j["bar"]))
}

func TestLoadEmptyPathIsNoop(t *testing.T) {
	s := New()
	_, err := Choice(s, "test", intRange(55))
	assert.NoError(t, err)
	before := s.Snapshot()

	assert.NoError(t, s.Load(""))
	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, "", s.Filename())
}

func TestLoadMissingFileRemembersPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	s := New()
	_, err := Choice(s, "test", intRange(55))
	assert.NoError(t, err)
	before := s.Snapshot()

	assert.NoError(t, s.Load(path))
	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, path, s.Filename())

	assert.NoError(t, s.Save(""))
	assert.Equal(t, before, readJSON(t, path))
}

func TestLoadThenSaveRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	original := `{"foo": [3,0,7,1], "bar": [2,0], "empty": []}`
	assert.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	s := New()
	assert.NoError(t, s.Load(path))
	assert.NoError(t, s.Save(""))

	var want map[string][]int
	assert.NoError(t, json.Unmarshal([]byte(original), &want))
	assert.Equal(t, want, readJSON(t, path))
}

func TestUnicodeRoundTrip(t *testing.T) {
	k1 := "fÖø💩"
	k2 := "𐐔𐐯𐑅𐐨𐑉𐐯𐐻"
	path := filepath.Join(t.TempDir(), "unicode.json")

	s := New()
	_, err := Choice(s, k1, intRange(300))
	assert.NoError(t, err)
	_, err = Choice(s, k2, intRange(55))
	assert.NoError(t, err)
	assert.NoError(t, s.Save(path))
	assert.Equal(t, path, s.Filename())

	u := New()
	assert.NoError(t, u.Load(path))
	assert.Equal(t, s.Snapshot(), u.Snapshot())
	assert.NoError(t, u.Save(""))

	// 文件里保留原始字符，不转义成 \uXXXX
	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.True(t, strings.Contains(string(data), k1))
	assert.True(t, strings.Contains(string(data), k2))

	j := readJSON(t, path)
	assert.Equal(t, u.Snapshot()[k1], j[k1])
	assert.Equal(t, u.Snapshot()[k2], j[k2])
}

func TestLoadCorruptLeavesStateUntouched(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"not json":       "shuffle",
		"array":          "[1,2,3]",
		"null":           "null",
		"null list":      `{"k": null}`,
		"string list":    `{"k": ["a"]}`,
		"float index":    `{"k": [1.5]}`,
		"negative index": `{"k": [0,-1]}`,
		"nested":         `{"k": [[1]]}`,
		"empty file":     "",
		"trailing":       `{"k": [1]} {}`,
		"invalid utf8":   "{\"\xff\": [1]}",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "corrupt.json")
			assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			s := New()
			s.restore(map[string][]int{"keep": {1, 0}})
			err := s.Load(path)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrCorruptState))
			assert.False(t, errors.Is(err, ErrIO))
			assert.Equal(t, map[string][]int{"keep": {1, 0}}, s.Snapshot())
			assert.Equal(t, "", s.Filename())
		})
	}
}

func TestLoadDirectoryIsIOFailure(t *testing.T) {
	s := New()
	err := s.Load(t.TempDir())
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))

	var stateErr *StateError
	assert.True(t, errors.As(err, &stateErr))
	assert.Equal(t, "load", stateErr.Op)
}

func TestSaveIntoMissingDirIsIOFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "state.json")
	s := New()
	_, err := Choice(s, "k", intRange(3))
	assert.NoError(t, err)

	err = s.Save(path)
	assert.True(t, errors.Is(err, ErrIO))
	assert.Equal(t, "", s.Filename())
}

func TestSaveReplacesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{"old": [1,2,3,4,5,6,7,8,9,10,11,12]}`), 0o644))

	s := New()
	s.restore(map[string][]int{"new": {0}})
	assert.NoError(t, s.Save(path))
	assert.Equal(t, map[string][]int{"new": {0}}, readJSON(t, path))

	// 不留下临时文件
	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(entries))
}

type memoryBackend struct {
	data map[string][]byte
	err  error
}

func (m *memoryBackend) Get(_ context.Context, name string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	data, ok := m.data[name]
	if !ok {
		return nil, ErrStateNotFound
	}
	return data, nil
}

func (m *memoryBackend) Put(_ context.Context, name string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.data[name] = data
	return nil
}

func TestBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := &memoryBackend{data: map[string][]byte{}}

	s := New(WithCompression(CompressionZSTD))
	_, err := Choice(s, "k", intRange(20))
	assert.NoError(t, err)
	assert.NoError(t, s.SaveTo(ctx, backend, "snap"))
	assert.Equal(t, "", s.Filename())

	u := New()
	assert.NoError(t, u.LoadFrom(ctx, backend, "missing"))
	assert.Equal(t, 0, len(u.Keys()))
	assert.NoError(t, u.LoadFrom(ctx, backend, "snap"))
	assert.Equal(t, s.Snapshot(), u.Snapshot())

	backend.err = errors.New("connection refused")
	err = u.LoadFrom(ctx, backend, "snap")
	assert.True(t, errors.Is(err, ErrIO))
	err = u.SaveTo(ctx, backend, "snap")
	assert.True(t, errors.Is(err, ErrIO))
}
