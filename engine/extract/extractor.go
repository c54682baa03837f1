// Package extract applies the lexicon tables to posting text, producing a
// per-posting SignalSet. Extraction is a pure transform: identical text and
// lexicon version always yield an identical SignalSet.
package extract

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/LeadScopeAI/leadscope-mvp/engine/domain"
	"github.com/LeadScopeAI/leadscope-mvp/engine/lexicon"
)

// Signals extracts every signal category from one posting's text.
// Empty text yields an all-empty SignalSet, never an error.
func Signals(text string) domain.SignalSet {
	if text == "" {
		return domain.SignalSet{}
	}
	lower, offsets := foldOffsets(text)

	techs := matchTerms(lower, lexicon.Technologies)
	skills := append(matchTerms(lower, lexicon.Skills), techs...)

	return domain.SignalSet{
		Technologies:   techs,
		UrgencyPhrases: matchPhrasesInOrder(text, lower, offsets, lexicon.UrgencyPhrases),
		Budget:         parseBudget(text, lower),
		PainPoints:     matchLiteral(lower, lexicon.PainPoints),
		Skills:         dedupe(skills),
	}
}

// foldOffsets lowercases text and maps each byte offset of the lowered form
// back to the start of the originating rune in text. Lowercasing maps runes
// one to one but can change their byte length (Ⱥ is two bytes, ⱥ is three),
// so offsets found in lower cannot slice text directly. ASCII text needs no
// table: offsets already align.
func foldOffsets(text string) (string, []int) {
	ascii := true
	for i := 0; i < len(text); i++ {
		if text[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	lower := strings.ToLower(text)
	if ascii {
		return lower, nil
	}

	offsets := make([]int, len(lower)+1)
	li := 0
	for ti, r := range text {
		n := utf8.RuneLen(unicode.ToLower(r))
		for k := 0; k < n; k++ {
			offsets[li+k] = ti
		}
		li += n
	}
	offsets[len(lower)] = len(text)
	return lower, offsets
}

func origAt(offsets []int, i int) int {
	if offsets == nil {
		return i
	}
	return offsets[i]
}

// matchTerms returns the canonical form of every term found in the text,
// deduplicated, in lexicon order.
func matchTerms(lower string, terms []string) []string {
	var out []string
	for _, term := range terms {
		if containsTerm(lower, strings.ToLower(term)) {
			out = append(out, term)
		}
	}
	return out
}

// matchLiteral is matchTerms for tables whose entries are already the
// canonical lowercase output form.
func matchLiteral(lower string, terms []string) []string {
	var out []string
	for _, term := range terms {
		if containsTerm(lower, term) {
			out = append(out, term)
		}
	}
	return out
}

// matchPhrasesInOrder finds each phrase's first occurrence and returns the
// matched text fragments sorted by position, deduplicated by phrase. Order is
// preserved because urgency language order matters for downstream review.
func matchPhrasesInOrder(text, lower string, offsets []int, phrases []string) []string {
	type hit struct {
		pos  int
		frag string
	}
	var hits []hit
	for _, phrase := range phrases {
		if idx := indexTerm(lower, phrase); idx >= 0 {
			hits = append(hits, hit{pos: idx, frag: text[origAt(offsets, idx):origAt(offsets, idx+len(phrase))]})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	seen := make(map[string]bool)
	var out []string
	for _, h := range hits {
		key := strings.ToLower(h.frag)
		if !seen[key] {
			seen[key] = true
			out = append(out, h.frag)
		}
	}
	return out
}

// parseBudget recognizes salary ranges, hourly rates, and equity mentions.
// The first match of each kind wins; malformed fragments never match and are
// dropped silently.
func parseBudget(text, lower string) domain.Budget {
	var b domain.Budget

	hourly := lexicon.HourlyRateRe.FindAllStringIndex(text, -1)
	if len(hourly) > 0 {
		b.HourlyRate = strings.TrimSpace(text[hourly[0][0]:hourly[0][1]])
	}

	// A salary match inside an hourly-rate span is the rate's currency
	// prefix, not an independent salary signal.
	for _, loc := range lexicon.SalaryRangeRe.FindAllStringIndex(text, -1) {
		if overlapsAny(loc, hourly) {
			continue
		}
		b.SalaryRange = text[loc[0]:loc[1]]
		break
	}

	for _, term := range lexicon.EquityTerms {
		if containsTerm(lower, term) {
			b.EquityMentioned = true
			break
		}
	}
	return b
}

func overlapsAny(loc []int, spans [][]int) bool {
	for _, s := range spans {
		if loc[0] < s[1] && s[0] < loc[1] {
			return true
		}
	}
	return false
}

// containsTerm reports whether term occurs in lower at a word boundary.
func containsTerm(lower, term string) bool {
	return indexTerm(lower, term) >= 0
}

// indexTerm finds the first boundary-valid occurrence of term in lower.
// Boundaries are checked with rune classes rather than \b so terms with
// regex-hostile characters (C++, C#, Node.js, CI/CD) still match, and short
// terms never match inside longer words (java vs javascript).
func indexTerm(lower, term string) int {
	if term == "" {
		return -1
	}
	for from := 0; ; {
		idx := strings.Index(lower[from:], term)
		if idx < 0 {
			return -1
		}
		idx += from
		if boundaryBefore(lower, idx) && boundaryAfter(lower, idx+len(term), term) {
			return idx
		}
		from = idx + 1
	}
}

func boundaryBefore(s string, idx int) bool {
	if idx == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(s[:idx])
	return !unicode.IsLetter(prev) && !unicode.IsDigit(prev)
}

func boundaryAfter(s string, end int, term string) bool {
	if end >= len(s) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(s[end:])
	if unicode.IsLetter(next) || unicode.IsDigit(next) {
		return false
	}
	// "c" must not match inside "c++" or "c#".
	if (next == '+' || next == '#') && !strings.ContainsRune(term, next) {
		return false
	}
	return true
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, v := range items {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
