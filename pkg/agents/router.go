package agents

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"legal-research-be/pkg/llm"
)

// RouteResult is the router's verdict on where to search.
type RouteResult struct {
	Domains     []string `json:"hukuk_dali"`
	SourceTypes []string `json:"kaynak_tipi"`
	Collections []string `json:"collections"`
}

// lawAbbreviation maps a statute abbreviation to its collection. Entries with
// an empty collection are recognized but not searchable; the corpus has no
// criminal or tax collections yet.
type lawAbbreviation struct {
	code       string
	collection string
}

var lawAbbreviations = []lawAbbreviation{
	{"TTK", "ticaret_hukuku"},
	{"TBK", "borclar_hukuku"},
	{"İİK", "icra_iflas"},
	{"IIK", "icra_iflas"},
	{"TMK", "medeni_hukuk"},
	{"TKHK", "tuketici_haklari"},
	{"HMK", "hmk"},
	{"TCK", ""},
	{"CMK", ""},
	{"VUK", ""},
}

// domainToCollection accepts Turkish and ASCII spellings of each domain so
// model output routes regardless of diacritics.
var domainToCollection = map[string]string{
	"ticaret":           "ticaret_hukuku",
	"ticaret hukuku":    "ticaret_hukuku",
	"ttk":               "ticaret_hukuku",
	"borçlar":           "borclar_hukuku",
	"borclar":           "borclar_hukuku",
	"borçlar hukuku":    "borclar_hukuku",
	"borclar hukuku":    "borclar_hukuku",
	"tbk":               "borclar_hukuku",
	"icra":              "icra_iflas",
	"iflas":             "icra_iflas",
	"icra iflas":        "icra_iflas",
	"iik":               "icra_iflas",
	"medeni":            "medeni_hukuk",
	"medeni hukuk":      "medeni_hukuk",
	"tmk":               "medeni_hukuk",
	"tüketici":          "tuketici_haklari",
	"tuketici":          "tuketici_haklari",
	"tüketici hakları":  "tuketici_haklari",
	"tuketici haklari":  "tuketici_haklari",
	"tkhk":              "tuketici_haklari",
	"bankacılık":        "bankacilik_hukuku",
	"bankacilik":        "bankacilik_hukuku",
	"bankacılık hukuku": "bankacilik_hukuku",
	"bankacilik hukuku": "bankacilik_hukuku",
	"hmk":               "hmk",
	"hukuk muhakemeleri": "hmk",
}

var collectionToDomain = map[string]string{
	"ticaret_hukuku":    "ticaret",
	"borclar_hukuku":    "borclar",
	"icra_iflas":        "icra",
	"medeni_hukuk":      "medeni",
	"tuketici_haklari":  "tuketici",
	"bankacilik_hukuku": "bankacilik",
	"hmk":               "hmk",
}

// AllCollections returns every known collection in a fixed order. The router
// falls back to this set when it cannot narrow the search.
func AllCollections() []string {
	return []string{
		"ticaret_hukuku",
		"borclar_hukuku",
		"icra_iflas",
		"medeni_hukuk",
		"tuketici_haklari",
		"bankacilik_hukuku",
		"hmk",
	}
}

// Router decides which collections a query should be searched in.
type Router struct {
	llm    llm.Provider
	logger *log.Logger
}

func NewRouter(provider llm.Provider, logger *log.Logger) *Router {
	return &Router{llm: provider, logger: logger}
}

const routerPrompt = `Sen Türk hukuku konusunda uzman bir yapay zeka asistanısın.
Görevin, kullanıcı sorgusunu analiz edip hangi hukuk dalı ve kaynak tiplerinin gerekli olduğunu belirlemek.

Hukuk Dalları: ticaret, borclar, icra, medeni, tuketici, bankacilik, hmk
Kaynak Tipleri: kanun, yonetmelik, ictihat, akademik

Sadece JSON formatında yanıt ver:
{"hukuk_dali": ["ticaret"], "kaynak_tipi": ["kanun"], "reasoning": "..."}

Sorgu: %QUERY%`

// Route never fails. The fast path matches statute abbreviations without a
// model call; the slow path classifies through the model; any failure falls
// back to searching every collection.
func (r *Router) Route(ctx context.Context, query string) RouteResult {
	if res, ok := r.quickMatch(query); ok {
		r.logger.Printf("[INFO] [ROUTER] Fast path matched: %v", res.Collections)
		return res
	}
	return r.classify(ctx, query)
}

func (r *Router) quickMatch(query string) (RouteResult, bool) {
	upper := strings.ToUpper(query)

	var collections []string
	seen := make(map[string]bool)
	for _, abbr := range lawAbbreviations {
		if !strings.Contains(upper, abbr.code) {
			continue
		}
		if abbr.collection == "" || seen[abbr.collection] {
			continue
		}
		seen[abbr.collection] = true
		collections = append(collections, abbr.collection)
	}
	if len(collections) == 0 {
		return RouteResult{}, false
	}

	domains := make([]string, 0, len(collections))
	for _, c := range collections {
		domains = append(domains, collectionToDomain[c])
	}
	return RouteResult{Domains: domains, Collections: collections}, true
}

func (r *Router) classify(ctx context.Context, query string) RouteResult {
	prompt := strings.ReplaceAll(routerPrompt, "%QUERY%", query)
	response, err := r.llm.Generate(ctx, prompt, llm.WithTemperature(0))
	if err != nil {
		r.logger.Printf("[WARN] [ROUTER] Classification failed: %v. Searching all collections", err)
		return fallbackRoute()
	}

	var parsed struct {
		Domains     []string `json:"hukuk_dali"`
		SourceTypes []string `json:"kaynak_tipi"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil || len(parsed.Domains) == 0 {
		r.logger.Printf("[WARN] [ROUTER] Unparseable classification. Searching all collections")
		return fallbackRoute()
	}

	var collections []string
	seen := make(map[string]bool)
	for _, domain := range parsed.Domains {
		collection, ok := domainToCollection[lowerTurkish(domain)]
		if !ok || seen[collection] {
			continue
		}
		seen[collection] = true
		collections = append(collections, collection)
	}
	if len(collections) == 0 {
		r.logger.Printf("[WARN] [ROUTER] No known domain in %v. Searching all collections", parsed.Domains)
		return fallbackRoute()
	}

	r.logger.Printf("[INFO] [ROUTER] Classified: domains=%v collections=%v", parsed.Domains, collections)
	return RouteResult{Domains: parsed.Domains, SourceTypes: parsed.SourceTypes, Collections: collections}
}

func fallbackRoute() RouteResult {
	return RouteResult{
		Domains:     []string{"genel"},
		SourceTypes: []string{"kanun"},
		Collections: AllCollections(),
	}
}

// lowerTurkish lowercases with dotted capital İ mapped to plain i, so map
// lookups survive Unicode case folding.
func lowerTurkish(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "İ", "i"))
}
