// Package compress provides the codecs used to shrink serialized circuit batches.
//
// A batch of amplified circuits is highly repetitive: the same gate names and
// site lists recur once per fold. The codecs here trade CPU for size:
//   - None: bytes are passed through untouched
//   - Zstd: best ratio, moderate speed
//   - S2: balanced
//   - LZ4: fastest decompression
//
// All codecs are safe for concurrent use.
package compress
