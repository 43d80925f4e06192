// Package audio decodes WAV output from the speech engine and plays it
// through oto/v3.
package audio
