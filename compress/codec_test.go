package compress

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/zne/errs"
)

func allTypes() []Type {
	return []Type{None, Zstd, S2, LZ4}
}

// foldedPayload mimics a serialized batch: a short pattern repeated many times.
func foldedPayload(repeats int) []byte {
	var buf bytes.Buffer
	for i := range repeats {
		fmt.Fprintf(&buf, "cx 0,1\ncx 0,1\nrz 1 %d\n", i%7)
	}

	return buf.Bytes()
}

func TestType_String(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{None, "none"},
		{Zstd, "zstd"},
		{S2, "s2"},
		{LZ4, "lz4"},
		{Type(0), "unknown"},
		{Type(99), "unknown"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, tt.typ.String())
		require.Equal(t, tt.want != "unknown", tt.typ.Valid())
	}
}

func TestParseType(t *testing.T) {
	for _, typ := range allTypes() {
		got, err := ParseType(typ.String())
		require.NoError(t, err)
		require.Equal(t, typ, got)
	}

	got, err := ParseType("  ZSTD ")
	require.NoError(t, err)
	require.Equal(t, Zstd, got)

	_, err = ParseType("gzip")
	require.ErrorIs(t, err, errs.ErrUnknownName)
}

func TestCreateCodec_Invalid(t *testing.T) {
	_, err := CreateCodec(Type(0))
	require.ErrorIs(t, err, errs.ErrInvalidValue)
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	random := make([]byte, 4096)
	for i := range random {
		random[i] = byte(rng.IntN(256))
	}

	payloads := map[string][]byte{
		"small":  []byte("h 0"),
		"folded": foldedPayload(500),
		"random": random,
	}

	for _, typ := range allTypes() {
		codec, err := CreateCodec(typ)
		require.NoError(t, err)

		for name, data := range payloads {
			t.Run(typ.String()+"/"+name, func(t *testing.T) {
				compressed, err := codec.Compress(data)
				require.NoError(t, err)

				restored, err := codec.Decompress(compressed)
				require.NoError(t, err)
				require.Equal(t, data, restored)
			})
		}
	}
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for _, typ := range allTypes() {
		codec, err := CreateCodec(typ)
		require.NoError(t, err)

		compressed, err := codec.Compress(nil)
		require.NoError(t, err)
		require.Empty(t, compressed)

		restored, err := codec.Decompress(nil)
		require.NoError(t, err)
		require.Empty(t, restored)
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	garbage := []byte{0xFF, 0xFE, 0xFD, 0xFC, 0xFB, 0xFA, 0x00, 0x01}

	for _, typ := range []Type{Zstd, S2, LZ4} {
		codec, err := CreateCodec(typ)
		require.NoError(t, err)

		_, err = codec.Decompress(garbage)
		require.Error(t, err, typ.String())
	}
}

func TestDecompress_SizeLimit(t *testing.T) {
	huge := binary.AppendUvarint(nil, MaxDecodedSize+1)

	_, err := NewLZ4Compressor().Decompress(append(huge, 0x00))
	require.ErrorIs(t, err, errs.ErrInvalidPayload)

	_, err = NewS2Compressor().Decompress(append(huge, 0x00))
	require.ErrorIs(t, err, errs.ErrInvalidPayload)
}

func TestLZ4_TruncatedPayload(t *testing.T) {
	compressed, err := NewLZ4Compressor().Compress(foldedPayload(100))
	require.NoError(t, err)

	_, err = NewLZ4Compressor().Decompress(compressed[:len(compressed)/2])
	require.Error(t, err)

	_, err = NewLZ4Compressor().Decompress([]byte{0x80})
	require.ErrorIs(t, err, errs.ErrInvalidPayload)
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	data := foldedPayload(200)

	for _, typ := range allTypes() {
		codec, err := CreateCodec(typ)
		require.NoError(t, err)

		var wg sync.WaitGroup
		errCh := make(chan error, 16)
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				compressed, err := codec.Compress(data)
				if err != nil {
					errCh <- err
					return
				}
				restored, err := codec.Decompress(compressed)
				if err != nil {
					errCh <- err
					return
				}
				if !bytes.Equal(data, restored) {
					errCh <- fmt.Errorf("%s: round trip mismatch", typ)
				}
			}()
		}
		wg.Wait()
		close(errCh)

		for err := range errCh {
			require.NoError(t, err)
		}
	}
}

func TestMeasure(t *testing.T) {
	data := foldedPayload(1000)

	stats, err := Measure(None, data)
	require.NoError(t, err)
	require.InDelta(t, 1.0, stats.CompressionRatio(), 1e-12)
	require.InDelta(t, 0.0, stats.SpaceSavings(), 1e-9)

	for _, typ := range []Type{Zstd, S2, LZ4} {
		stats, err := Measure(typ, data)
		require.NoError(t, err)
		require.Equal(t, typ, stats.Algorithm)
		require.Equal(t, int64(len(data)), stats.OriginalSize)
		require.Less(t, stats.CompressionRatio(), 0.5, typ.String())
		require.Greater(t, stats.SpaceSavings(), 50.0)
	}

	require.Zero(t, Stats{}.CompressionRatio())
}
