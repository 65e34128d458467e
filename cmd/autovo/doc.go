// Command autovo generates voice-over audio for game dialogs and packages
// the results as an installable mod.
package main
