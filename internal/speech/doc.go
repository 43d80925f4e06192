// Package speech defines the output capability the dispatcher speaks
// through. A host platform supplies the voice list, a change notification
// and a sequential playback queue.
package speech
