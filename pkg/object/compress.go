package object

import (
	"bytes"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic is the frame magic number every zstd stream starts with. Raw
// object envelopes begin with an ASCII type name, so the two never collide.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

var (
	encoderOnce sync.Once
	encoder     *zstd.Encoder
	encoderErr  error

	decoderOnce sync.Once
	decoder     *zstd.Decoder
	decoderErr  error
)

func sharedEncoder() (*zstd.Encoder, error) {
	encoderOnce.Do(func() {
		encoder, encoderErr = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderConcurrency(1),
		)
	})
	return encoder, encoderErr
}

func sharedDecoder() (*zstd.Decoder, error) {
	decoderOnce.Do(func() {
		decoder, decoderErr = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	})
	return decoder, decoderErr
}

// compressZstd compresses data using zstd.
func compressZstd(data []byte) ([]byte, error) {
	enc, err := sharedEncoder()
	if err != nil {
		return nil, err
	}
	return enc.EncodeAll(data, nil), nil
}

// decompressZstd decompresses zstd-compressed data.
func decompressZstd(data []byte) ([]byte, error) {
	dec, err := sharedDecoder()
	if err != nil {
		return nil, err
	}
	return dec.DecodeAll(data, nil)
}

// isZstdEncoded reports whether raw starts with a zstd frame.
func isZstdEncoded(raw []byte) bool {
	return bytes.HasPrefix(raw, zstdMagic)
}
