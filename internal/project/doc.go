// Package project reads and writes tempo map project files.
//
// A project file is line oriented text with three sections:
//
//	[AudioPath]
//	song.wav
//	[TimeSignaturePoints]
//	4;3;4
//	[TimingPoints]
//	0;0;4;4
//	2;2;4;4
//	5.5;4;3;4;0.75
//
// Time signature lines are measure;numerator;denominator. Timing point
// lines are offset;position;numerator;denominator, and the last line also
// carries the free tempo of the last point in measures per second.
//
// Loading is resilient: a line that cannot be parsed, or that would break
// the ordering of the timing points, is skipped and reported in
// Project.Skipped. An audio path that is missing or does not resolve to a
// file fails the load with ErrAudioNotFound.
//
// Encoding a project that was loaded without skipped lines reproduces the
// file byte for byte.
package project
