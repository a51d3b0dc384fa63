package host

import (
	"strconv"

	"neuromap/internal/dataset"
)

// ChannelName returns the generated name of an input or output channel: in1, in2,
// ... or out1, out2, ...
func ChannelName(isInput bool, index int) string {
	prefix := "out"
	if isInput {
		prefix = "in"
	}
	return prefix + strconv.Itoa(index+1)
}

func channelNames(isInput bool, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = ChannelName(isInput, i)
	}
	return names
}

func featureNames(names []string, isInput bool, n int) []string {
	if len(names) == n {
		return append([]string(nil), names...)
	}
	return channelNames(isInput, n)
}

type namedSource interface {
	ChannelName(channel int) string
}

func passThrough(src dataset.ChannelSource) Output {
	if src == nil {
		return Output{}
	}
	channels := src.NumChannels()
	samples := src.NumSamples()
	out := Output{
		Names:    make([]string, channels),
		Channels: make([][]float64, channels),
	}
	named, _ := src.(namedSource)
	for ch := 0; ch < channels; ch++ {
		name := ""
		if named != nil {
			name = named.ChannelName(ch)
		}
		if name == "" {
			name = ChannelName(true, ch)
		}
		out.Names[ch] = name
		values := make([]float64, samples)
		for i := range values {
			values[i] = src.Value(ch, i)
		}
		out.Channels[ch] = values
	}
	return out
}

func vectorOutput(values []float64, dim int) Output {
	out := Output{
		Names:    channelNames(false, dim),
		Channels: make([][]float64, dim),
	}
	for ch := range out.Channels {
		v := 0.0
		if ch < len(values) {
			v = values[ch]
		}
		out.Channels[ch] = []float64{v}
	}
	return out
}
