package kv

import (
	"fmt"

	"github.com/DataDog/zstd"
)

const compressionLevel = zstd.DefaultCompression

func compress(chunk []byte) ([]byte, error) {
	out, err := zstd.CompressLevel(nil, chunk, compressionLevel)
	if err != nil {
		return nil, fmt.Errorf("zstd compress: %w", err)
	}
	return out, nil
}

func decompress(chunk []byte) ([]byte, error) {
	out, err := zstd.Decompress(nil, chunk)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return out, nil
}
