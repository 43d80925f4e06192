// Package script splits mixed Hindi and English text into same-script runs.
// Classification is a binary Devanagari-or-not decision made per
// whitespace-separated token.
package script
