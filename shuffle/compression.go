package shuffle

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zstd"
	lz4 "github.com/pierrec/lz4/v4"
)

// CompressionType 压缩算法类型
type CompressionType string

const (
	CompressionNone CompressionType = "none" // 纯文本（默认）
	CompressionLZ4  CompressionType = "lz4"
	CompressionZSTD CompressionType = "zstd"
)

// compressionMagic 压缩数据的前缀魔数，用于识别压缩算法。
// 两个魔数的首字节都不可能出现在 JSON 文本开头。
var (
	compressionMagicLZ4  = []byte{0x4C, 0x5A, 0x34, 0x01} // "LZ4\01"
	compressionMagicZSTD = []byte{0x5A, 0x53, 0x54, 0x44} // "ZSTD"
)

// ParseCompression 解析配置中的压缩算法名称，空字符串视为 none
func ParseCompression(name string) (CompressionType, error) {
	switch CompressionType(strings.ToLower(strings.TrimSpace(name))) {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionLZ4:
		return CompressionLZ4, nil
	case CompressionZSTD, "zst":
		return CompressionZSTD, nil
	default:
		return "", fmt.Errorf("unsupported compression type: %s", name)
	}
}

// compressData 压缩数据
func compressData(data []byte, compressionType CompressionType) ([]byte, error) {
	switch compressionType {
	case "", CompressionNone:
		return data, nil
	case CompressionLZ4:
		return compressLZ4(data)
	case CompressionZSTD:
		return compressZSTD(data)
	default:
		return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
	}
}

// decompressData 按魔数解压，没有压缩标记时原样返回
func decompressData(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, compressionMagicLZ4) {
		return decompressLZ4(data[len(compressionMagicLZ4):])
	}
	if bytes.HasPrefix(data, compressionMagicZSTD) {
		return decompressZSTD(data[len(compressionMagicZSTD):])
	}
	return data, nil
}

// compressLZ4 使用LZ4压缩
func compressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(compressionMagicLZ4)

	writer := lz4.NewWriter(&buf)
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress write error: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress close error: %w", err)
	}
	return buf.Bytes(), nil
}

// decompressLZ4 使用LZ4解压缩
func decompressLZ4(data []byte) ([]byte, error) {
	reader := lz4.NewReader(bytes.NewReader(data))
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return nil, fmt.Errorf("lz4 decompress error: %w", err)
	}
	return buf.Bytes(), nil
}

// compressZSTD 使用ZSTD压缩
func compressZSTD(data []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder creation error: %w", err)
	}
	defer encoder.Close()

	return encoder.EncodeAll(data, append([]byte(nil), compressionMagicZSTD...)), nil
}

// decompressZSTD 使用ZSTD解压缩
func decompressZSTD(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder creation error: %w", err)
	}
	defer decoder.Close()

	out, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress error: %w", err)
	}
	return out, nil
}
