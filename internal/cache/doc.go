// Package cache stores synthesized audio so repeated chunks skip the
// speech engine. An in-memory LRU (L1) sits in front of a zstd-compressed
// disk cache (L2) that survives restarts.
package cache
