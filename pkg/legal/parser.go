package legal

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ReferenceKind indicates what kind of legal source a reference points to.
type ReferenceKind string

const (
	// KindStatute is a law article reference (e.g. "TTK m.11").
	KindStatute ReferenceKind = "madde"
	// KindCaseLaw is a court decision reference (e.g. "Yargıtay 11. HD 2019/1234 E.").
	KindCaseLaw ReferenceKind = "ictihat"
)

// Reference is a single parsed legal citation.
type Reference struct {
	RawText     string
	Kind        ReferenceKind
	LawCode     string // TTK, TBK, ...
	ArticleNo   int    // madde
	ParagraphNo int    // fikra (0 = none)
	SubItem     string // bent letter ("" = none)
	Court       string // for case law: "Yargıtay 11. HD"
	CaseNo      string // esas, "2019/1234"
	DecisionNo  string // karar, "2020/5678"
	Confidence  float64
}

// LawNames maps known law-code abbreviations to their full names.
var LawNames = map[string]string{
	"TTK":  "Türk Ticaret Kanunu",
	"TBK":  "Türk Borçlar Kanunu",
	"TMK":  "Türk Medeni Kanunu",
	"İİK":  "İcra ve İflas Kanunu",
	"TKHK": "Tüketici Kanunu",
	"HMK":  "Hukuk Muhakemeleri Kanunu",
	"CMK":  "Ceza Muhakemesi Kanunu",
	"TCK":  "Türk Ceza Kanunu",
	"VUK":  "Vergi Usul Kanunu",
	"GVK":  "Gelir Vergisi Kanunu",
	"KVK":  "Kurumlar Vergisi Kanunu",
}

// DefaultLawCodes is the default allow-list of law-code abbreviations.
// İİK also appears in its ASCII spelling IIK; both normalize to İİK.
var DefaultLawCodes = []string{
	"TTK", "TBK", "TMK", "İİK", "IIK", "TKHK", "HMK", "CMK", "TCK", "VUK", "GVK", "KVK",
}

var (
	yargitayPattern = regexp.MustCompile(
		`(?i)(Yargıtay)\s+(\d+)\.\s*(HD|Hukuk Dairesi|CD|Ceza Dairesi)\.?` +
			`\s*(?:(\d{4})/(\d+)\s*E\.?)?\s*(?:,?\s*(\d{4})/(\d+)\s*K\.?)?`)
	danistayPattern = regexp.MustCompile(
		`(?i)(Danıştay)\s+(\d+)\.\s*Daire\.?` +
			`\s*(?:(\d{4})/(\d+)\s*E\.?)?\s*(?:,?\s*(\d{4})/(\d+)\s*K\.?)?`)
	aymPattern = regexp.MustCompile(
		`(?i)\b(AYM|Anayasa Mahkemesi)\b\s*(?:(\d{4})/(\d+))?`)
)

// Parser extracts legal references from free text. The law-code allow-list is
// configurable; patterns are compiled once at construction.
type Parser struct {
	codes          []string
	explicitMadde  *regexp.Regexp // CODE m.N / CODE madde N
	looseMadde     *regexp.Regexp // CODE N (madde keyword optional)
}

// NewParser builds a parser for the given law codes. With no arguments the
// default allow-list is used.
func NewParser(codes ...string) *Parser {
	if len(codes) == 0 {
		codes = DefaultLawCodes
	}
	quoted := make([]string, len(codes))
	for i, c := range codes {
		quoted[i] = regexp.QuoteMeta(c)
	}
	alt := strings.Join(quoted, "|")

	return &Parser{
		codes: codes,
		explicitMadde: regexp.MustCompile(
			`(?i)(` + alt + `)\s*(?:m\.|madde)\s*(\d+)(?:/(\d+))?(?:-([a-z]))?`),
		looseMadde: regexp.MustCompile(
			`(?i)(` + alt + `)\s*(?:m\.|madde)?\s*(\d+)(?:/(\d+))?(?:-([a-z]))?`),
	}
}

// Parse extracts every legal reference in text. Overlapping article matches
// produced by the explicit and loose patterns are deduplicated, keeping the
// most specific one.
func (p *Parser) Parse(text string) []Reference {
	var refs []spanned
	refs = append(refs, p.parseMadde(text, p.explicitMadde, 1.0)...)
	refs = append(refs, p.parseMadde(text, p.looseMadde, 0.85)...)
	deduped := dedupeStatutes(refs)

	deduped = append(deduped, p.parseCourt(text, yargitayPattern, courtYargitay)...)
	deduped = append(deduped, p.parseCourt(text, danistayPattern, courtDanistay)...)
	deduped = append(deduped, p.parseAYM(text)...)
	return deduped
}

type spanned struct {
	ref   Reference
	start int
	end   int
}

func (p *Parser) parseMadde(text string, pattern *regexp.Regexp, confidence float64) []spanned {
	var out []spanned
	for _, idx := range pattern.FindAllStringSubmatchIndex(text, -1) {
		raw := text[idx[0]:idx[1]]
		code := normalizeLawCode(group(text, idx, 1))
		articleNo, _ := strconv.Atoi(group(text, idx, 2))

		ref := Reference{
			RawText:    raw,
			Kind:       KindStatute,
			LawCode:    code,
			ArticleNo:  articleNo,
			Confidence: confidence,
		}
		if f := group(text, idx, 3); f != "" {
			ref.ParagraphNo, _ = strconv.Atoi(f)
		}
		if b := group(text, idx, 4); b != "" {
			ref.SubItem = strings.ToLower(b)
		}
		out = append(out, spanned{ref: ref, start: idx[0], end: idx[1]})
	}
	return out
}

// dedupeStatutes collapses overlapping matches for the same code+article pair,
// keeping the most specific one (most fields, then highest confidence).
func dedupeStatutes(matches []spanned) []Reference {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].start != matches[j].start {
			return matches[i].start < matches[j].start
		}
		return specificity(matches[i].ref) > specificity(matches[j].ref)
	})

	var kept []spanned
	for _, m := range matches {
		replaced := false
		for i, k := range kept {
			if !overlaps(m, k) || m.ref.LawCode != k.ref.LawCode || m.ref.ArticleNo != k.ref.ArticleNo {
				continue
			}
			if specificity(m.ref) > specificity(k.ref) {
				kept[i] = m
			}
			replaced = true
			break
		}
		if !replaced {
			kept = append(kept, m)
		}
	}

	out := make([]Reference, len(kept))
	for i, k := range kept {
		out[i] = k.ref
	}
	return out
}

func specificity(r Reference) int {
	score := 0
	if r.ParagraphNo > 0 {
		score += 2
	}
	if r.SubItem != "" {
		score += 2
	}
	if r.Confidence >= 1.0 {
		score++
	}
	return score
}

func overlaps(a, b spanned) bool {
	return a.start < b.end && b.start < a.end
}

type courtKind int

const (
	courtYargitay courtKind = iota
	courtDanistay
)

func (p *Parser) parseCourt(text string, pattern *regexp.Regexp, kind courtKind) []Reference {
	var out []Reference
	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		var court string
		if kind == courtYargitay {
			court = fmt.Sprintf("Yargıtay %s. %s", m[2], strings.TrimSuffix(m[3], "."))
		} else {
			court = fmt.Sprintf("Danıştay %s. Daire", m[2])
		}

		ref := Reference{
			RawText:    strings.TrimSpace(m[0]),
			Kind:       KindCaseLaw,
			Court:      court,
			Confidence: 0.9,
		}
		if m[4] != "" && m[5] != "" {
			ref.CaseNo = m[4] + "/" + m[5]
		}
		if m[6] != "" && m[7] != "" {
			ref.DecisionNo = m[6] + "/" + m[7]
		}
		out = append(out, ref)
	}
	return out
}

func (p *Parser) parseAYM(text string) []Reference {
	var out []Reference
	for _, m := range aymPattern.FindAllStringSubmatch(text, -1) {
		ref := Reference{
			RawText:    strings.TrimSpace(m[0]),
			Kind:       KindCaseLaw,
			Court:      "Anayasa Mahkemesi",
			Confidence: 0.8,
		}
		if m[2] != "" && m[3] != "" {
			ref.CaseNo = m[2] + "/" + m[3]
		}
		out = append(out, ref)
	}
	return out
}

// Format canonicalizes a reference into its graph-key string. Statute articles
// render as "CODE m.N/P-b"; the form is stable, so two parses of the same
// citation always produce the same key, and formatted output re-parses to the
// same reference.
func Format(ref Reference) string {
	switch ref.Kind {
	case KindStatute:
		var b strings.Builder
		fmt.Fprintf(&b, "%s m.%d", ref.LawCode, ref.ArticleNo)
		if ref.ParagraphNo > 0 {
			fmt.Fprintf(&b, "/%d", ref.ParagraphNo)
		}
		if ref.SubItem != "" {
			fmt.Fprintf(&b, "-%s", ref.SubItem)
		}
		return b.String()
	case KindCaseLaw:
		parts := []string{ref.Court}
		if ref.CaseNo != "" {
			parts = append(parts, ref.CaseNo+" E.")
		}
		if ref.DecisionNo != "" {
			parts = append(parts, ref.DecisionNo+" K.")
		}
		return strings.Join(parts, " ")
	}
	return ref.RawText
}

// ExtractLawCodes returns the unique, sorted law codes cited in text.
func (p *Parser) ExtractLawCodes(text string) []string {
	seen := make(map[string]bool)
	for _, ref := range p.Parse(text) {
		if ref.LawCode != "" {
			seen[ref.LawCode] = true
		}
	}
	codes := make([]string, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// LawName resolves a law code to its full name, or "" if unknown.
func LawName(code string) string {
	return LawNames[normalizeLawCode(code)]
}

func normalizeLawCode(code string) string {
	upper := strings.ToUpper(code)
	// Dotless-I spelling of İİK
	if upper == "IIK" || upper == "İİK" {
		return "İİK"
	}
	return upper
}

func group(text string, idx []int, n int) string {
	if idx[2*n] < 0 {
		return ""
	}
	return text[idx[2*n]:idx[2*n+1]]
}
