// Package engine builds and runs external image-processing engine commands
// (siril-cli by default) in scripted mode.
//
// Every invocation has the same shape:
//
//	<engine> [extra args...] -d <workDir> -s <script>
//
// run with workDir as the current directory. Output is opaque: it is tee'd
// to a per-stage log and the tail is kept for error reports. Success is exit
// code 0; anything else is an *ExecutionError carried in the Result. There
// is no retry.
package engine
