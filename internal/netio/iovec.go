// File: internal/netio/iovec.go
// Small helper for trimming a gather-write vector, used by Sink.DoSend to
// emit a frame's header and payload in a single writev(2).
// License: Apache-2.0

package netio

// trimIovecs drops whole segments already consumed by pos bytes and trims
// the first remaining segment's leading bytes, returning the gather vector
// to pass to the next unix.Writev call. segs is not mutated.
func trimIovecs(segs [][]byte, pos int) [][]byte {
	out := make([][]byte, 0, len(segs))
	for _, s := range segs {
		if pos >= len(s) {
			pos -= len(s)
			continue
		}
		out = append(out, s[pos:])
		pos = 0
	}
	return out
}
