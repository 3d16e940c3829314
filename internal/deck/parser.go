// Package deck parses event-deck documents into the static market event
// catalog. Decks are line-oriented markdown: a numbered quoted headline
// introduces a card, and a Scope/Target line, an Impact line, and a Why
// line must all appear in the few lines that follow. Malformed cards are
// skipped, never fatal.
package deck

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"stockcamp/internal/game"
)

// lookaheadLines bounds how far past a card header its fields may appear.
const lookaheadLines = 9

var (
	// Matches: 12) “Title”  or  12) "Title"
	headerRE      = regexp.MustCompile(`^\s*(\d+)\)\s*[“"](.+?)[”"]\s*$`)
	scopeTargetRE = regexp.MustCompile(`(?i)^-\s*Scope:\s*([^|]+)\|\s*Target:\s*(.+)$`)
	impactRE      = regexp.MustCompile(`(?i)\bImpact:\s*(.+)$`)
	whyRE         = regexp.MustCompile(`(?i)^-\s*Why:\s*(.+)$`)

	orImpactRE = regexp.MustCompile(`(?i)([+-]?\d*\.?\d+)\s*OR\s*([+-]?\d*\.?\d+)`)
	numberRE   = regexp.MustCompile(`[+-]?\d*\.?\d+`)

	slugRE = regexp.MustCompile(`[^a-z0-9]+`)
)

type card struct {
	num   int
	event game.MarketEvent
}

// Parse extracts the ordered event catalog from a deck document. Cards
// missing any field, carrying an unrecognized scope token, naming an
// unknown sector, or with an unparsable impact are dropped without a
// record. Ordering is by ascending card number regardless of document
// order, and ids are deterministic for a given document.
func Parse(raw string) []game.MarketEvent {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	var cards []card
	for i := 0; i < len(lines); i++ {
		header := headerRE.FindStringSubmatch(lines[i])
		if header == nil {
			continue
		}
		num, err := strconv.Atoi(header[1])
		if err != nil {
			continue
		}
		title := strings.TrimSpace(header[2])

		var scopeRaw, targetRaw, impactRaw, explanation string
		end := i + lookaheadLines
		if end > len(lines)-1 {
			end = len(lines) - 1
		}
		for j := i + 1; j <= end; j++ {
			line := strings.TrimSpace(lines[j])
			if headerRE.MatchString(line) {
				break // next card starts; this card's window is over
			}
			if m := scopeTargetRE.FindStringSubmatch(line); m != nil {
				scopeRaw = strings.TrimSpace(m[1])
				targetRaw = strings.TrimSpace(m[2])
				continue
			}
			if m := whyRE.FindStringSubmatch(line); m != nil {
				explanation = strings.TrimSpace(m[1])
				continue
			}
			if m := impactRE.FindStringSubmatch(line); m != nil {
				impactRaw = strings.TrimSpace(m[1])
			}
		}
		if scopeRaw == "" || targetRaw == "" || impactRaw == "" || explanation == "" {
			continue
		}

		scope, ok := parseScope(scopeRaw)
		if !ok {
			continue
		}
		impact, alt, ok := parseImpact(impactRaw)
		if !ok {
			continue
		}
		target, ok := resolveTarget(scope, targetRaw)
		if !ok {
			continue
		}

		ev := game.MarketEvent{
			ID:           cardID(num, title),
			Title:        title,
			Scope:        scope,
			Target:       target,
			ImpactPct:    impact,
			ImpactPctAlt: alt,
			Explanation:  explanation,
		}
		ev.Crash = scope == game.ScopeMarket &&
			impact <= game.CrashThreshold &&
			strings.Contains(strings.ToLower(title), "crash")
		cards = append(cards, card{num: num, event: ev})
	}

	sort.SliceStable(cards, func(i, j int) bool { return cards[i].num < cards[j].num })

	events := make([]game.MarketEvent, len(cards))
	for i, c := range cards {
		events[i] = c.event
	}
	return events
}

// parseScope normalizes the scope token. Unrecognized tokens drop the
// card rather than defaulting to MARKET.
func parseScope(raw string) (game.EventScope, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "COMPANY":
		return game.ScopeCompany, true
	case "SECTOR":
		return game.ScopeSector, true
	case "MARKET":
		return game.ScopeMarket, true
	}
	return "", false
}

// parseImpact handles the three impact forms: a single signed decimal, two
// decimals joined by OR (the alternate is the GM's-choice impact), and the
// explicit 0.00 literal (covered by the single-decimal form).
func parseImpact(raw string) (float64, *float64, bool) {
	if m := orImpactRE.FindStringSubmatch(raw); m != nil {
		first, err1 := strconv.ParseFloat(m[1], 64)
		second, err2 := strconv.ParseFloat(m[2], 64)
		if err1 != nil || err2 != nil {
			return 0, nil, false
		}
		return first, &second, true
	}
	if m := numberRE.FindString(raw); m != "" {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, nil, false
		}
		return v, nil, true
	}
	return 0, nil, false
}

func resolveTarget(scope game.EventScope, raw string) (string, bool) {
	switch scope {
	case game.ScopeMarket:
		// The document's target text is ignored for market-wide cards.
		return game.TargetAll, true
	case game.ScopeSector:
		for _, s := range game.Sectors {
			if s.Name == raw {
				return string(s.ID), true
			}
		}
		return "", false
	default:
		return raw, true
	}
}

func cardID(num int, title string) string {
	slug := strings.ToLower(title)
	slug = slugRE.ReplaceAllString(slug, "_")
	slug = strings.Trim(slug, "_")
	if len(slug) > 40 {
		slug = slug[:40]
	}
	return fmt.Sprintf("cp_%d_%s", num, slug)
}
