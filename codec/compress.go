package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ZstdCodec wraps an inner codec with zstd compression.
//
// Useful for the slower persistent tiers where payload bytes dominate cost
// (durable quota, remote round-trips).
type ZstdCodec struct {
	inner Codec
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// NewZstd creates a zstd-compressing codec around inner.
// If inner is nil, Default is used.
func NewZstd(inner Codec) (*ZstdCodec, error) {
	if inner == nil {
		inner = Default
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &ZstdCodec{inner: inner, enc: enc, dec: dec}, nil
}

// Marshal encodes the value with the inner codec and compresses the result.
func (c *ZstdCodec) Marshal(v any) ([]byte, error) {
	raw, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	return c.enc.EncodeAll(raw, nil), nil
}

// Unmarshal decompresses the data and decodes it with the inner codec.
func (c *ZstdCodec) Unmarshal(data []byte, v any) error {
	raw, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("zstd decompress: %w", err)
	}
	return c.inner.Unmarshal(raw, v)
}

// Name returns the unique name of the codec.
func (c *ZstdCodec) Name() string { return "zstd+" + c.inner.Name() }

// LZ4Codec wraps an inner codec with lz4 frame compression.
//
// Faster but weaker compression than zstd; a reasonable choice for the local
// durable tier where CPU budget is tighter than storage.
type LZ4Codec struct {
	inner Codec
}

// NewLZ4 creates an lz4-compressing codec around inner.
// If inner is nil, Default is used.
func NewLZ4(inner Codec) *LZ4Codec {
	if inner == nil {
		inner = Default
	}
	return &LZ4Codec{inner: inner}
}

// Marshal encodes the value with the inner codec and compresses the result.
func (c *LZ4Codec) Marshal(v any) ([]byte, error) {
	raw, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decompresses the data and decodes it with the inner codec.
func (c *LZ4Codec) Unmarshal(data []byte, v any) error {
	raw, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return fmt.Errorf("lz4 decompress: %w", err)
	}
	return c.inner.Unmarshal(raw, v)
}

// Name returns the unique name of the codec.
func (c *LZ4Codec) Name() string { return "lz4+" + c.inner.Name() }
