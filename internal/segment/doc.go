// Package segment splits dialog text into narrator and character spans
// using quotation-mark state, and classifies lines for scheduling.
package segment
