package shuffle

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySequence 调用 Choice/Pick 时候选序列长度为 0
	ErrEmptySequence = errors.New("shuffle: empty sequence")
	// ErrCorruptState 持久化内容不是 string -> []int 的 JSON 对象
	ErrCorruptState = errors.New("shuffle: corrupt state")
	// ErrIO 底层读写失败
	ErrIO = errors.New("shuffle: io failure")
	// ErrStateNotFound 由 Backend.Get 返回，表示还没有可加载的状态
	ErrStateNotFound = errors.New("shuffle: state not found")
)

// StateError records a failed load or save together with its kind
// (ErrCorruptState or ErrIO) and the underlying cause.
type StateError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *StateError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("shuffle: %s %q: %v: %v", e.Op, e.Path, kindName(e.Kind), e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *StateError) Unwrap() []error {
	if e == nil {
		return nil
	}
	return []error{e.Kind, e.Err}
}

func kindName(kind error) string {
	switch {
	case errors.Is(kind, ErrCorruptState):
		return "corrupt state"
	case errors.Is(kind, ErrIO):
		return "io failure"
	default:
		return "error"
	}
}

func corruptError(op, path string, err error) error {
	return &StateError{Op: op, Path: path, Kind: ErrCorruptState, Err: err}
}

func ioError(op, path string, err error) error {
	var stateErr *StateError
	if errors.As(err, &stateErr) {
		return err
	}
	return &StateError{Op: op, Path: path, Kind: ErrIO, Err: err}
}
