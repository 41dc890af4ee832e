package chart

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
)

// Typeface is the name a loaded chart font is registered under in the gonum/plot font cache.
const Typeface font.Typeface = "ecboard"

// ErrNoFont is returned when no Hangul-capable font is found in the well-known locations.
var ErrNoFont = errors.New("no Hangul-capable font found")

// FontCandidates are tried in order when no font path is configured.
var FontCandidates = []string{
	`C:\Windows\Fonts\malgun.ttf`,
	"/System/Library/Fonts/AppleSDGothicNeo.ttc",
	"/Library/Fonts/AppleGothic.ttf",
	"/usr/share/fonts/truetype/nanum/NanumGothic.ttf",
	"/usr/share/fonts/nanum/NanumGothic.ttf",
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/google-noto-cjk/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/noto/NotoSansKR-Regular.ttf",
}

var fontMu sync.Mutex

// LoadFont parses a TrueType/OpenType file, or the first face of a .ttc collection.
func LoadFont(path string) (*opentype.Font, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	if strings.HasSuffix(strings.ToLower(path), ".ttc") {
		coll, err := opentype.ParseCollection(b)
		if err != nil {
			return nil, fmt.Errorf("parse font collection %s: %w", path, err)
		}
		f, err := coll.Font(0)
		if err != nil {
			return nil, fmt.Errorf("font collection %s: %w", path, err)
		}
		return f, nil
	}
	f, err := opentype.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return f, nil
}

// HasHangul reports whether f maps Hangul syllables to glyphs.
func HasHangul(f *opentype.Font) bool {
	var buf sfnt.Buffer
	for _, r := range "한글" {
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil || idx == 0 {
			return false
		}
	}
	return true
}

// UseFont registers the font at path and makes it the default for plots created afterwards.
// With an empty path the FontCandidates are searched for one with Hangul glyphs; ErrNoFont
// is returned when none is usable. It returns the path of the installed font.
//
// The plot defaults are package globals, so call it before rendering starts.
func UseFont(path string) (string, error) {
	if path != "" {
		f, err := LoadFont(path)
		if err != nil {
			return "", err
		}
		if !HasHangul(f) {
			slog.Warn("chart font has no Hangul glyphs; Korean labels will not render", "path", path)
		}
		install(f)
		return path, nil
	}
	for _, p := range FontCandidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		f, err := LoadFont(p)
		if err != nil {
			slog.Debug("skipping chart font", "path", p, "err", err)
			continue
		}
		if !HasHangul(f) {
			continue
		}
		install(f)
		return p, nil
	}
	return "", ErrNoFont
}

func install(f *opentype.Font) {
	fontMu.Lock()
	defer fontMu.Unlock()
	fnt := font.Font{Typeface: Typeface}
	font.DefaultCache.Add(font.Collection{{Font: fnt, Face: f}})
	plot.DefaultFont = fnt
	plotter.DefaultFont = fnt
}
