// Package preset loads aligner presets from JSON files.
package preset
