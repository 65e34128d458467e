// Package schedule groups pending lines into synthesis chunks keyed by
// (seed key, intensity, step count), rotating the seed bank in fixed-size
// groups, and executes chunks against the synthesizer while enforcing the
// output-count invariant.
package schedule
