// ABOUTME: Interactive audio mixing engine package
// ABOUTME: Channels, sources, admission policy and the device callback
// Package mixer implements an interactive audio mixing engine driven by a
// fixed-rate pull callback from a host audio device.
//
// An Engine owns a set of numbered channels. Each channel plays one Source,
// resampling and reformatting it to the mixer format on the fly, applying
// per-channel volume, fades, loops and timeouts, and accumulating into a
// 32-bit summing buffer. When more sources are requested than channels are
// available, a configurable admission policy chooses the victim.
//
// Example:
//
//	eng := mixer.New(mixer.Config{})
//	exact, err := eng.Init(22050, audio.S16, 2, 100)
//	src, _ := mixer.NewSampleSource(pcm, format)
//	ch, _ := eng.Play(src, mixer.PlayOpts{Loops: 0, Timeout: mixer.Infinite, Target: mixer.FreeChannel})
//	eng.FadeOut(ch, 500)
package mixer
