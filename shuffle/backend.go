package shuffle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Backend 按名称保存/读取一份完整的状态快照。
// Get 在名称不存在时必须返回 ErrStateNotFound。
type Backend interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, data []byte) error
}

// FileBackend 把快照保存为文件，名称即文件路径
type FileBackend struct {
	Perm fs.FileMode // 0 表示 0644
}

// Get 读取整个文件
func (FileBackend) Get(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrStateNotFound
	}
	return data, err
}

// Put 先写入同目录下的临时文件，再重命名覆盖目标文件
func (b FileBackend) Put(_ context.Context, path string, data []byte) error {
	perm := b.Perm
	if perm == 0 {
		perm = 0o644
	}

	tmp := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Load 从文件加载状态并整体替换内存中的状态。
//
// path 为空时什么都不做；文件不存在时不修改状态，但会记住 path 供之后的 Save 使用。
// 内容不合法返回 ErrCorruptState，读取失败返回 ErrIO，两种情况下 Store 都保持不变。
func (s *Store) Load(path string) error {
	if path == "" {
		return nil
	}
	if err := s.load(context.Background(), FileBackend{}, "load", path); err != nil {
		return err
	}
	s.filename = path
	return nil
}

// Save 把完整状态写入文件，覆盖原有内容。
// path 为空时使用最近一次 Load/Save 的路径；仍然没有路径则什么都不做。
func (s *Store) Save(path string) error {
	if path == "" {
		path = s.filename
	}
	if path == "" {
		return nil
	}
	if err := s.save(context.Background(), FileBackend{}, "save", path); err != nil {
		return err
	}
	s.filename = path
	return nil
}

// LoadFrom 从任意 Backend 加载状态，规则与 Load 相同，但不改变 Filename
func (s *Store) LoadFrom(ctx context.Context, backend Backend, name string) error {
	if name == "" {
		return nil
	}
	return s.load(ctx, backend, "load", name)
}

// SaveTo 把状态写入任意 Backend，不改变 Filename
func (s *Store) SaveTo(ctx context.Context, backend Backend, name string) error {
	if name == "" {
		return nil
	}
	return s.save(ctx, backend, "save", name)
}

func (s *Store) load(ctx context.Context, backend Backend, op, name string) error {
	data, err := backend.Get(ctx, name)
	if errors.Is(err, ErrStateNotFound) {
		s.log.Debug().Str("name", name).Msg("no saved state yet")
		return nil
	}
	if err != nil {
		return ioError(op, name, err)
	}

	data, err = decompressData(data)
	if err != nil {
		return corruptError(op, name, err)
	}
	state, err := decodeState(data)
	if err != nil {
		return corruptError(op, name, err)
	}

	s.restore(state)
	s.log.Debug().Str("name", name).Int("keys", len(state)).Msg("loaded state")
	return nil
}

func (s *Store) save(ctx context.Context, backend Backend, op, name string) error {
	data, err := encodeState(s.Snapshot())
	if err != nil {
		return ioError(op, name, err)
	}
	data, err = compressData(data, s.compression)
	if err != nil {
		return ioError(op, name, err)
	}
	if err := backend.Put(ctx, name, data); err != nil {
		return ioError(op, name, err)
	}
	s.log.Debug().Str("name", name).Int("keys", len(s.state)).Msg("saved state")
	return nil
}
