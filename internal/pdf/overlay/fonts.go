package overlay

import (
	"fmt"
	"os"
	"strings"

	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

// wideGlyphRanges are the code point ranges whose glyphs fall outside
// the base Latin set the built-in PDF fonts cover: CJK symbols and
// punctuation, Hiragana, Katakana, the CJK Unified Ideographs blocks,
// Hangul syllables, and halfwidth/fullwidth forms.
var wideGlyphRanges = [][2]rune{
	{0x3000, 0x303F},
	{0x3040, 0x309F},
	{0x30A0, 0x30FF},
	{0x3400, 0x4DBF},
	{0x4E00, 0x9FFF},
	{0xAC00, 0xD7AF},
	{0xFF00, 0xFFEF},
}

// ContainsWideGlyphs reports whether any rune of the text needs glyph
// coverage beyond the base Latin set.
func ContainsWideGlyphs(text string) bool {
	for _, r := range text {
		for _, rng := range wideGlyphRanges {
			if r >= rng[0] && r <= rng[1] {
				return true
			}
		}
	}
	return false
}

// NeedsWideGlyphs reports whether any entry of the layout carries text
// requiring wide-glyph coverage. One hit switches the whole document to
// the embedded-glyph rendering strategy; there is no per-page mix.
func NeedsWideGlyphs(layout *Layout) bool {
	for _, entry := range layout.FieldEntries {
		if entry.TextContent != nil && ContainsWideGlyphs(entry.TextContent.Content) {
			return true
		}
	}
	return false
}

// FontCandidate names one font resource that may provide wide-glyph
// coverage. Only TrueType (.ttf) files can be embedded; collection
// (.ttc) files are listed for completeness but skipped at resolution.
type FontCandidate struct {
	Name string
	Path string
}

// DefaultFontCandidates returns the prioritized platform font resources
// probed for wide-glyph coverage, covering the common install locations
// on Linux, macOS and Windows.
func DefaultFontCandidates() []FontCandidate {
	return []FontCandidate{
		// Linux
		{Name: "DroidSansFallback", Path: "/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf"},
		{Name: "NotoSansCJK", Path: "/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc"},
		{Name: "WenQuanYiZenHei", Path: "/usr/share/fonts/truetype/wqy/wqy-zenhei.ttc"},
		// macOS
		{Name: "ArialUnicode", Path: "/Library/Fonts/Arial Unicode.ttf"},
		{Name: "PingFang", Path: "/System/Library/Fonts/PingFang.ttc"},
		// Windows
		{Name: "SimHei", Path: "C:/Windows/Fonts/simhei.ttf"},
		{Name: "MicrosoftYaHei", Path: "C:/Windows/Fonts/msyh.ttc"},
		{Name: "SimSun", Path: "C:/Windows/Fonts/simsun.ttc"},
	}
}

// FontSet is the set of embeddable fonts resolved from a candidate list.
// It is built once at startup and injected into the renderer, so tests
// can exercise both strategies without probing the real filesystem.
type FontSet struct {
	fonts   []FontCandidate
	probed  []FontCandidate
	skipped []string
}

// ResolveFonts probes the candidate list in priority order and keeps
// the candidates that exist and can be embedded. Resolution is a plain
// presence check; there is no blocking or retrying.
func ResolveFonts(candidates []FontCandidate) *FontSet {
	set := &FontSet{probed: candidates}
	for _, c := range candidates {
		if _, err := os.Stat(c.Path); err != nil {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(c.Path), ".ttf") {
			set.skipped = append(set.skipped,
				fmt.Sprintf("%s (%s): font collections cannot be embedded", c.Name, c.Path))
			continue
		}
		set.fonts = append(set.fonts, c)
	}
	return set
}

// NewFontSet builds a set directly from known-good fonts, bypassing
// filesystem probing.
func NewFontSet(fonts ...FontCandidate) *FontSet {
	return &FontSet{fonts: fonts, probed: fonts}
}

// First returns the highest-priority embeddable font.
func (s *FontSet) First() (FontCandidate, bool) {
	if len(s.fonts) == 0 {
		return FontCandidate{}, false
	}
	return s.fonts[0], true
}

// Empty reports whether no embeddable font was found.
func (s *FontSet) Empty() bool {
	return len(s.fonts) == 0
}

// missingFontError builds the fatal, actionable error reported when a
// document needs wide-glyph coverage but no capable font is installed.
func missingFontError(candidates []FontCandidate) error {
	var b strings.Builder
	b.WriteString("the document contains text that needs wide-glyph coverage, but no usable font was found; ")
	b.WriteString("without one the text would render as placeholder boxes. ")
	b.WriteString("Install a CJK-capable TrueType font and retry ")
	b.WriteString("(Linux: apt-get install fonts-droid-fallback, macOS: ships with PingFang, Windows: ships with Microsoft YaHei). ")
	b.WriteString("Probed paths:")
	for _, c := range candidates {
		b.WriteString(fmt.Sprintf(" %s (%s);", c.Path, c.Name))
	}
	return pdferrors.New(pdferrors.KindResourceUnavailable, b.String())
}
