// Package audio plays the accessibility cue that accompanies a banner.
// It uses the beep library to play WAV, OGG, and MP3 cue files, or a
// short generated tone when no file is configured.
package audio
