package wavutil

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const pcmFormat = 1

// Clip is decoded WAV audio with interleaved integer samples.
type Clip struct {
	SampleRate  int
	BitDepth    int
	NumChannels int
	AudioFormat int
	Samples     []int
}

// Frames is the per-channel sample count.
func (c *Clip) Frames() int {
	if c.NumChannels == 0 {
		return 0
	}
	return len(c.Samples) / c.NumChannels
}

// FormatEqual reports whether two clips share every format attribute.
// Clips from different synthesizer invocations must agree before they can
// be stitched.
func (c *Clip) FormatEqual(o *Clip) bool {
	return c.SampleRate == o.SampleRate &&
		c.BitDepth == o.BitDepth &&
		c.NumChannels == o.NumChannels &&
		c.AudioFormat == o.AudioFormat
}

// ReadFile decodes a whole WAV file into memory.
func ReadFile(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if buf.Format == nil {
		return nil, fmt.Errorf("decode %s: missing format", path)
	}
	return &Clip{
		SampleRate:  buf.Format.SampleRate,
		BitDepth:    int(decoder.BitDepth),
		NumChannels: buf.Format.NumChannels,
		AudioFormat: int(decoder.WavAudioFormat),
		Samples:     buf.Data,
	}, nil
}

// WriteFile encodes the clip to path.
func WriteFile(path string, clip *Clip) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := wav.NewEncoder(f, clip.SampleRate, clip.BitDepth, clip.NumChannels, clip.AudioFormat)
	buf := &audio.IntBuffer{
		Data:           clip.Samples,
		Format:         &audio.Format{SampleRate: clip.SampleRate, NumChannels: clip.NumChannels},
		SourceBitDepth: clip.BitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return encoder.Close()
}

// Concat joins clips in order. Every clip must carry the same format as
// the first; a mismatch is an error since mixed-format output would be
// silently corrupt.
func Concat(clips []*Clip) (*Clip, error) {
	if len(clips) == 0 {
		return nil, fmt.Errorf("no clips to concatenate")
	}
	base := clips[0]
	total := 0
	for i, c := range clips {
		if !base.FormatEqual(c) {
			return nil, fmt.Errorf("wav format mismatch at clip %d: got (%d ch, %d bit, %d Hz, fmt %d), expected (%d ch, %d bit, %d Hz, fmt %d)",
				i, c.NumChannels, c.BitDepth, c.SampleRate, c.AudioFormat,
				base.NumChannels, base.BitDepth, base.SampleRate, base.AudioFormat)
		}
		total += len(c.Samples)
	}
	out := &Clip{
		SampleRate:  base.SampleRate,
		BitDepth:    base.BitDepth,
		NumChannels: base.NumChannels,
		AudioFormat: base.AudioFormat,
		Samples:     make([]int, 0, total),
	}
	for _, c := range clips {
		out.Samples = append(out.Samples, c.Samples...)
	}
	return out, nil
}

// FadeSpec gives edge fade lengths in milliseconds.
type FadeSpec struct {
	InMS  int
	OutMS int
}

// ApplyFades returns a copy of the clip with linear edge fades. Only
// 16-bit uncompressed PCM is faded; anything else comes back unchanged
// with a debug log. Fade lengths clamp to half the clip so in and out
// never overlap.
func ApplyFades(clip *Clip, spec FadeSpec, logger *slog.Logger) *Clip {
	if logger == nil {
		logger = slog.Default()
	}
	if spec.InMS <= 0 && spec.OutMS <= 0 {
		return clip
	}
	if clip.BitDepth != 16 || clip.AudioFormat != pcmFormat {
		logger.Debug("skipping fade, unsupported format",
			"bit_depth", clip.BitDepth, "audio_format", clip.AudioFormat)
		return clip
	}
	frames := clip.Frames()
	if frames == 0 {
		return clip
	}

	out := &Clip{
		SampleRate:  clip.SampleRate,
		BitDepth:    clip.BitDepth,
		NumChannels: clip.NumChannels,
		AudioFormat: clip.AudioFormat,
		Samples:     append([]int(nil), clip.Samples...),
	}

	fadeIn := clip.SampleRate * spec.InMS / 1000
	fadeOut := clip.SampleRate * spec.OutMS / 1000
	half := frames / 2
	if fadeIn > half {
		fadeIn = half
	}
	if fadeOut > half {
		fadeOut = half
	}

	for i := 0; i < fadeIn; i++ {
		factor := float64(i) / float64(fadeIn)
		scaleFrame(out, i, factor)
	}
	for i := 0; i < fadeOut; i++ {
		factor := float64(fadeOut-i) / float64(fadeOut)
		scaleFrame(out, frames-fadeOut+i, factor)
	}
	return out
}

// FadeFile applies ApplyFades to a file in place. Zero-length specs are a
// no-op without touching the file.
func FadeFile(path string, spec FadeSpec, logger *slog.Logger) error {
	if spec.InMS <= 0 && spec.OutMS <= 0 {
		return nil
	}
	clip, err := ReadFile(path)
	if err != nil {
		return err
	}
	faded := ApplyFades(clip, spec, logger)
	if faded == clip {
		return nil
	}
	return WriteFile(path, faded)
}

func scaleFrame(clip *Clip, frame int, factor float64) {
	for c := 0; c < clip.NumChannels; c++ {
		idx := frame*clip.NumChannels + c
		if idx < 0 || idx >= len(clip.Samples) {
			return
		}
		clip.Samples[idx] = int(float64(clip.Samples[idx]) * factor)
	}
}
