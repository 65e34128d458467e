package manifest

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"autovo/internal/resolver"
)

// WriteTP2 writes the installer manifest for one dialog into modDir and
// returns the manifest path. Assets are copied once each; every
// (strref, asset) pair gets a STRING_SET so duplicate-text references
// share one physical file. Tildes in display text are swapped for
// backticks since tilde delimits strings in the manifest grammar.
func WriteTP2(modDir, modID, dialogBase string, lines []resolver.Line) (string, error) {
	if err := os.MkdirAll(filepath.Join(modDir, "backup"), 0o755); err != nil {
		return "", fmt.Errorf("ensure mod backup dir: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "BACKUP ~%s/backup~\n", modID)
	b.WriteString("AUTHOR ~autovo pipeline~\n\n")
	fmt.Fprintf(&b, "BEGIN ~Auto-VO for %s~\n\n", strings.ToUpper(dialogBase))

	seenAssets := make(map[string]struct{}, len(lines))
	for _, ln := range lines {
		if _, ok := seenAssets[ln.AssetName]; ok {
			continue
		}
		seenAssets[ln.AssetName] = struct{}{}
		fmt.Fprintf(&b, "COPY ~%s/sounds/%s.wav~ ~override/%s.wav~\n", modID, ln.AssetName, ln.AssetName)
	}
	b.WriteString("\n")

	type pair struct {
		strref int
		asset  string
	}
	seenPairs := make(map[pair]struct{}, len(lines))
	for _, ln := range lines {
		p := pair{strref: ln.StrRef, asset: ln.AssetName}
		if _, ok := seenPairs[p]; ok {
			continue
		}
		seenPairs[p] = struct{}{}

		text := strings.ReplaceAll(ln.Text, "\r\n", "\n")
		text = strings.ReplaceAll(text, "~", "`")
		fmt.Fprintf(&b, "STRING_SET %d ~%s~ [%s]\n", ln.StrRef, text, ln.AssetName)
	}

	name := fmt.Sprintf("setup-%s.tp2", path.Base(modID))
	tp2Path := filepath.Join(modDir, name)
	if err := os.WriteFile(tp2Path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write tp2 manifest: %w", err)
	}
	return tp2Path, nil
}
