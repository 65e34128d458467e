// Package assemble rebuilds audio for lines that mix narration and
// character speech: segments are synthesized per role in two batches,
// concatenated in segment order, and faded at the edges. Narrator-only
// lines are generated here too since they use the narrator voice.
package assemble
