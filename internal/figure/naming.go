package figure

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Directory names used by the non-flat output layout.
const (
	JSONDir  = "json"
	ImageDir = "img"
	LabelDir = "text-masked"
)

// idPattern extracts "<ident>-Figure-<n>" from any derived file name.
var idPattern = regexp.MustCompile(`(.*-Figure-[0-9]+).*\.json`)

// Names derives the artifact file names for one figure of a document.
// Downstream tooling parses these names, so they must not change.
type Names struct {
	// Ident is the PDF base name without extension.
	Ident string
	// Index is the 0-based position of the figure in the extractor output.
	Index int
}

// ID returns "<ident>-Figure-<index>".
func (n Names) ID() string {
	return fmt.Sprintf("%s-Figure-%d", n.Ident, n.Index)
}

// JSON returns the per-figure record name.
func (n Names) JSON() string {
	return n.ID() + ".json"
}

// Image returns the rendered bitmap name for a DPI multiple. Factor 1 has no
// suffix; others are "-<factor>x".
func (n Names) Image(factor int) string {
	if factor == 1 {
		return n.ID() + ".png"
	}
	return fmt.Sprintf("%s-%dx.png", n.ID(), factor)
}

// Label returns the ground-truth mask name.
func (n Names) Label() string {
	return n.ID() + "-label.png"
}

// Debug returns the debug composite name.
func (n Names) Debug() string {
	return n.ID() + "-dbg.png"
}

// IdentFromPath returns the PDF base name without its extension.
func IdentFromPath(pdfPath string) string {
	base := filepath.Base(pdfPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IDFromRecordName extracts the figure identifier from a record file name
// such as "paper-Figure-3.json". It reports false for names that do not
// follow the convention.
func IDFromRecordName(name string) (string, bool) {
	m := idPattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1], true
}
