// Package store provides SQLite-backed persistence for the leveling
// system and free-text conversation transcripts.
package store
