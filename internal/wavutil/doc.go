// Package wavutil reads and writes PCM WAV clips and provides the pure
// transforms the assembler needs: edge fades and format-checked
// concatenation.
package wavutil
