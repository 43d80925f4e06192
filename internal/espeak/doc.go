// Package espeak is the host speech platform: it lists espeak-ng voices,
// synthesizes requests with the espeak-ng binary and plays them one at a
// time through the audio package.
package espeak
