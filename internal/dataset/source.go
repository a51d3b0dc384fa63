package dataset

import "golang.org/x/exp/constraints"

// ChannelSource is a multi-channel block of samples as delivered by the host for a
// single execution step.
type ChannelSource interface {
	NumChannels() int
	NumSamples() int
	Value(channel, index int) float64
}

// Block is a ChannelSource over per-channel sample slices. Hosts usually deliver
// float32 channel data; recordings and tests use float64.
type Block[T constraints.Float] struct {
	Names []string
	Data  [][]T
}

// NewBlock builds a single-sample block holding one value per channel.
func NewBlock[T constraints.Float](values ...T) *Block[T] {
	data := make([][]T, len(values))
	for i, v := range values {
		data[i] = []T{v}
	}
	return &Block[T]{Data: data}
}

func (b *Block[T]) NumChannels() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// NumSamples reports the shortest channel length, so every index below it is valid
// on every channel.
func (b *Block[T]) NumSamples() int {
	if b == nil || len(b.Data) == 0 {
		return 0
	}
	n := len(b.Data[0])
	for _, ch := range b.Data[1:] {
		if len(ch) < n {
			n = len(ch)
		}
	}
	return n
}

func (b *Block[T]) Value(channel, index int) float64 {
	if b == nil || channel < 0 || channel >= len(b.Data) {
		return 0
	}
	ch := b.Data[channel]
	if index < 0 || index >= len(ch) {
		return 0
	}
	return float64(ch[index])
}

// ChannelName returns the configured name of a channel, or "" when unnamed.
func (b *Block[T]) ChannelName(channel int) string {
	if b == nil || channel < 0 || channel >= len(b.Names) {
		return ""
	}
	return b.Names[channel]
}

// isNil reports whether src is nil, including a typed-nil *Block stored in the
// interface.
func isNil(src ChannelSource) bool {
	switch s := src.(type) {
	case nil:
		return true
	case *Block[float32]:
		return s == nil
	case *Block[float64]:
		return s == nil
	}
	return false
}

// Frame reads the first time-sample of the first dim channels of src. Channels the
// source does not have are zero.
func Frame(src ChannelSource, dim int) []float64 {
	out := make([]float64, 0, max(dim, 0))
	if isNil(src) {
		src = &Block[float64]{}
	}
	n := min(dim, src.NumChannels())
	for ch := 0; ch < n; ch++ {
		out = append(out, src.Value(ch, 0))
	}
	for len(out) < dim {
		out = append(out, 0)
	}
	return out
}
