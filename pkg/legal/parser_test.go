package legal

import (
	"testing"
)

func TestParseStatuteReferences(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name     string
		text     string
		wantCode string
		wantArt  int
		wantPar  int
		wantSub  string
	}{
		{
			name:     "dotted form",
			text:     "TTK m.11 hükmüne göre",
			wantCode: "TTK",
			wantArt:  11,
		},
		{
			name:     "madde keyword",
			text:     "TBK Madde 123 uygulanır",
			wantCode: "TBK",
			wantArt:  123,
		},
		{
			name:     "bare form",
			text:     "TMK 23 kapsamında",
			wantCode: "TMK",
			wantArt:  23,
		},
		{
			name:     "paragraph and sub-item",
			text:     "İİK m.68/1-a uyarınca",
			wantCode: "İİK",
			wantArt:  68,
			wantPar:  1,
			wantSub:  "a",
		},
		{
			name:     "ascii iik normalized",
			text:     "IIK m.68",
			wantCode: "İİK",
			wantArt:  68,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs := p.Parse(tt.text)
			if len(refs) != 1 {
				t.Fatalf("Parse(%q) returned %d references, want 1", tt.text, len(refs))
			}
			ref := refs[0]
			if ref.Kind != KindStatute {
				t.Errorf("Kind = %v, want %v", ref.Kind, KindStatute)
			}
			if ref.LawCode != tt.wantCode {
				t.Errorf("LawCode = %q, want %q", ref.LawCode, tt.wantCode)
			}
			if ref.ArticleNo != tt.wantArt {
				t.Errorf("ArticleNo = %d, want %d", ref.ArticleNo, tt.wantArt)
			}
			if ref.ParagraphNo != tt.wantPar {
				t.Errorf("ParagraphNo = %d, want %d", ref.ParagraphNo, tt.wantPar)
			}
			if ref.SubItem != tt.wantSub {
				t.Errorf("SubItem = %q, want %q", ref.SubItem, tt.wantSub)
			}
		})
	}
}

func TestParseDeduplicatesOverlappingMatches(t *testing.T) {
	p := NewParser()

	// Both the explicit and the loose pattern match this text; only the most
	// specific reference may survive.
	refs := p.Parse("TTK m.11/2-a")
	if len(refs) != 1 {
		t.Fatalf("got %d references, want 1: %+v", len(refs), refs)
	}
	if refs[0].ParagraphNo != 2 || refs[0].SubItem != "a" {
		t.Errorf("kept reference lost specificity: %+v", refs[0])
	}
	if refs[0].Confidence < 1.0 {
		t.Errorf("expected the explicit match to win, got confidence %v", refs[0].Confidence)
	}
}

func TestParseCaseLawReferences(t *testing.T) {
	p := NewParser()

	refs := p.Parse("Yargıtay 11. HD 2019/1234 E., 2020/5678 K. kararında")
	if len(refs) != 1 {
		t.Fatalf("got %d references, want 1", len(refs))
	}
	ref := refs[0]
	if ref.Kind != KindCaseLaw {
		t.Errorf("Kind = %v, want %v", ref.Kind, KindCaseLaw)
	}
	if ref.Court != "Yargıtay 11. HD" {
		t.Errorf("Court = %q", ref.Court)
	}
	if ref.CaseNo != "2019/1234" {
		t.Errorf("CaseNo = %q", ref.CaseNo)
	}
	if ref.DecisionNo != "2020/5678" {
		t.Errorf("DecisionNo = %q", ref.DecisionNo)
	}
}

func TestParseDanistayAndAYM(t *testing.T) {
	p := NewParser()

	refs := p.Parse("Danıştay 10. Daire 2018/456 E. ve AYM 2021/99 başvurusu")
	if len(refs) != 2 {
		t.Fatalf("got %d references, want 2: %+v", len(refs), refs)
	}
	if refs[0].Court != "Danıştay 10. Daire" || refs[0].CaseNo != "2018/456" {
		t.Errorf("danistay ref = %+v", refs[0])
	}
	if refs[1].Court != "Anayasa Mahkemesi" || refs[1].CaseNo != "2021/99" {
		t.Errorf("aym ref = %+v", refs[1])
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		ref  Reference
		want string
	}{
		{
			name: "article only",
			ref:  Reference{Kind: KindStatute, LawCode: "TTK", ArticleNo: 11},
			want: "TTK m.11",
		},
		{
			name: "full statute",
			ref:  Reference{Kind: KindStatute, LawCode: "İİK", ArticleNo: 68, ParagraphNo: 1, SubItem: "a"},
			want: "İİK m.68/1-a",
		},
		{
			name: "case law",
			ref:  Reference{Kind: KindCaseLaw, Court: "Yargıtay 11. HD", CaseNo: "2019/1234", DecisionNo: "2020/5678"},
			want: "Yargıtay 11. HD 2019/1234 E. 2020/5678 K.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.ref); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Parsing a text, formatting each reference and re-parsing the formatted string
// must reproduce the same canonical reference.
func TestCanonicalizationRoundTrip(t *testing.T) {
	p := NewParser()

	texts := []string{
		"TTK m.11 nedir?",
		"TBK madde 49/2 tazminat",
		"İİK m.68/1-a itirazın kaldırılması",
		"Yargıtay 11. HD 2019/1234 E., 2020/5678 K.",
		"Danıştay 4. Daire 2017/100 E.",
	}

	for _, text := range texts {
		for _, ref := range p.Parse(text) {
			formatted := Format(ref)
			reparsed := p.Parse(formatted)
			if len(reparsed) != 1 {
				t.Fatalf("re-parse of %q returned %d references", formatted, len(reparsed))
			}
			if got := Format(reparsed[0]); got != formatted {
				t.Errorf("round trip of %q: got %q", formatted, got)
			}
		}
	}
}

func TestExtractLawCodes(t *testing.T) {
	p := NewParser()

	codes := p.ExtractLawCodes("TTK m.11 ile TBK m.49 ve tekrar TTK m.12")
	if len(codes) != 2 || codes[0] != "TBK" || codes[1] != "TTK" {
		t.Errorf("ExtractLawCodes = %v, want [TBK TTK]", codes)
	}
}

func TestLawName(t *testing.T) {
	if got := LawName("ttk"); got != "Türk Ticaret Kanunu" {
		t.Errorf("LawName(ttk) = %q", got)
	}
	if got := LawName("XYZ"); got != "" {
		t.Errorf("LawName(XYZ) = %q, want empty", got)
	}
}
