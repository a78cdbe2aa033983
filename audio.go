package rondo

type (
	// AudioBuffer is a buffer of stereo frames, [0] = left, [1] = right.
	AudioBuffer [][2]float32

	// AudioSource fills buffers with audio on demand. ReadAudio is called
	// from the audio backend's thread and should not block.
	AudioSource interface {
		ReadAudio(buf AudioBuffer) error
	}

	// AudioContext is a host audio device that pulls from a source.
	AudioContext interface {
		Play(source AudioSource) CloserWaiter
		Close() error
	}

	// CloserWaiter is returned by AudioContext.Play. Close stops playback;
	// Wait blocks until playback has stopped. Err returns the error of the
	// source that stopped playback, or nil.
	CloserWaiter interface {
		Close() error
		Wait()
		Err() error
	}
)

// Fill renders len(buf) frames from the source into a fresh buffer.
func Fill(source AudioSource, frames int) (AudioBuffer, error) {
	buf := make(AudioBuffer, frames)
	if err := source.ReadAudio(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
