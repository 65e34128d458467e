// Package seeds loads the reference-voice bank: (wav, txt) pairs whose
// transcripts prompt the synthesizer toward a target voice. A bank may be
// a directory of pairs or a single wav file, and the narrator voice is a
// separate fixed bank.
package seeds
