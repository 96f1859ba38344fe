// Package naming owns the file-name rules of the merged sequence namespace.
//
// The engine writes a calibrated sequence as <seq>_<frame><ext> in each
// night's process directory. Before nights are merged, every file is renamed
// in place to <seq>_<ordinal>_<frame><ext> so that frame numbers restarting at
// 00001 every night cannot collide in the shared directory. Optionally the
// merged set is renumbered into one contiguous <seq>_%05d sequence instead.
//
// Split:
//   - matcher.go: Matcher, the prefix + extension predicate
//   - remap.go: in-place per-night remap and the SequenceFile record
//   - renumber.go: shared-directory targets (ordinal names or contiguous)
//   - guard.go: claimed-name tracking for the shared namespace
//   - conversion.go: the conversion.txt map written next to merged frames
package naming
