package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Paths locates every per-dialog artifact under the work directory. All
// generated content for one dialog lives in its own mod subdirectory.
type Paths struct {
	ModSubdir       string
	ModID           string
	ModDir          string
	SoundsDir       string
	InputFile       string
	TmpDir          string
	RunLogPath      string
	TranslationDump string
}

// NewPaths derives the artifact layout for a dialog basename.
func NewPaths(workDir, dialogBase string) Paths {
	sub := fmt.Sprintf("autovo_%s", strings.ToLower(dialogBase))
	modDir := filepath.Join(workDir, sub)
	return Paths{
		ModSubdir:       sub,
		ModID:           "autovo/" + sub,
		ModDir:          modDir,
		SoundsDir:       filepath.Join(modDir, "sounds"),
		InputFile:       filepath.Join(modDir, sub+"_input.txt"),
		TmpDir:          filepath.Join(modDir, "tmp_batch"),
		RunLogPath:      filepath.Join(modDir, sub+"_run.log"),
		TranslationDump: filepath.Join(modDir, "dialog_full.tra"),
	}
}

// AssetPath is the final location of one generated audio asset.
func (p Paths) AssetPath(asset string) string {
	return filepath.Join(p.SoundsDir, asset+".wav")
}

// LockPath is the run lock shared by all dialogs under one work directory.
func LockPath(workDir string) string {
	return filepath.Join(workDir, "autovo.lock")
}

// RegistryPath is the asset registry database for the work directory.
func RegistryPath(workDir string) string {
	return filepath.Join(workDir, "registry.db")
}

// BackupDir holds string-table snapshots for the work directory.
func BackupDir(workDir string) string {
	return filepath.Join(workDir, "backup")
}
