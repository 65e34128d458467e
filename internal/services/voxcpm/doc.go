// Package voxcpm wraps the VoxCPM text-to-speech CLI. Batch requests
// synthesize many texts in one process launch; outputs are consumed in
// lexicographic filename order as positionally corresponding to input
// order.
package voxcpm
