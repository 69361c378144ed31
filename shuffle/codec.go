package shuffle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// encodeState 把状态编码成 JSON 文本。
// key 按字典序输出，非 ASCII 字符原样保留；换行只为方便阅读，不保证格式稳定。
func encodeState(state map[string][]int) ([]byte, error) {
	if len(state) == 0 {
		return []byte("{}"), nil
	}

	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, k := range keys {
		if i > 0 {
			buf.WriteString(",\n")
		}
		encodedKey, err := marshalString(k)
		if err != nil {
			return nil, fmt.Errorf("encode key %q: %w", k, err)
		}
		buf.Write(encodedKey)
		buf.WriteString(": [")
		for j, idx := range state[k] {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.Itoa(idx))
		}
		buf.WriteByte(']')
	}
	buf.WriteString("\n}")
	return buf.Bytes(), nil
}

// marshalString 编码 JSON 字符串，不转义 <>&
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// decodeState 解析并校验状态文本：顶层必须是对象，每个值必须是非负整数数组。
// 任何不符合的内容都整体失败，不会返回部分结果。
func decodeState(data []byte) (map[string][]int, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, errors.New("content is not valid UTF-8")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	if raw == nil {
		return nil, errors.New("top level is null, want object")
	}

	state := make(map[string][]int, len(raw))
	for k, v := range raw {
		indices, err := decodeIndices(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		state[k] = indices
	}
	return state, nil
}

func decodeIndices(raw json.RawMessage) ([]int, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, errors.New("value is null, want array of integers")
	}
	var indices []int
	if err := json.Unmarshal(raw, &indices); err != nil {
		return nil, fmt.Errorf("decode indices: %w", err)
	}
	for _, idx := range indices {
		if idx < 0 {
			return nil, fmt.Errorf("negative index %d", idx)
		}
	}
	if indices == nil {
		indices = []int{}
	}
	return indices, nil
}

// MarshalJSON 以持久化格式编码 Store 的状态
func (s *Store) MarshalJSON() ([]byte, error) {
	return encodeState(s.Snapshot())
}

// UnmarshalJSON 整体替换 Store 的状态；内容不合法时返回 ErrCorruptState 且状态不变
func (s *Store) UnmarshalJSON(data []byte) error {
	state, err := decodeState(data)
	if err != nil {
		return corruptError("unmarshal", "", err)
	}
	if s.rng == nil {
		// json.Unmarshal 到零值 Store
		*s = *New()
	}
	s.restore(state)
	return nil
}
