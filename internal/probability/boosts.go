package probability

import (
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/util"
)

// Counter-intelligence boost bounds
const (
	pressReleasePerItem = 0.03
	maxPressRelease     = 0.10
	counterVideoPerItem = 0.05
	maxCounterVideo     = 0.15
	maxTotalReduction   = 0.20
	maxQuotes           = 2
	quoteLength         = 160

	// Share of the TRUE reduction moved to FALSE; the rest goes to UNCERTAIN
	falseShare = 0.6
)

// CounterIntelligenceBoosts explains how promotional press coverage and
// counter-narrative videos weigh against the claim
func CounterIntelligenceBoosts(ev model.GroupedEvidence) []model.Boost {
	var boosts []model.Boost

	var promotional []model.EvidenceItem
	for _, item := range ev.PressRelease {
		if item.ValidationPower < 1.0 {
			promotional = append(promotional, item)
		}
	}
	if n := len(promotional); n > 0 {
		boosts = append(boosts, model.Boost{
			Source:      model.GroupPressRelease,
			Description: fmt.Sprintf("%d press release(s) tied to the subject of the video; promotional coverage is not independent confirmation", n),
			Quotes:      quotes(promotional),
			Reduction:   math.Min(maxPressRelease, pressReleasePerItem*float64(n)),
		})
	}

	if n := len(ev.YouTubeCounter); n > 0 {
		boosts = append(boosts, model.Boost{
			Source:      model.GroupYouTubeCounter,
			Description: fmt.Sprintf("%d counter-narrative video(s) dispute the claim", n),
			Quotes:      quotes(ev.YouTubeCounter),
			Reduction:   math.Min(maxCounterVideo, counterVideoPerItem*float64(n)),
		})
	}

	return boosts
}

// applyBoosts removes the combined reduction from TRUE, bounded by the
// total cap and by TRUE itself, and redistributes it
func applyBoosts(d model.Distribution, boosts []model.Boost) model.Distribution {
	total := 0.0
	for _, b := range boosts {
		total += b.Reduction
	}
	total = math.Min(total, maxTotalReduction)
	total = math.Min(total, d.True)
	if total <= 0 {
		return d
	}

	d.True -= total
	d.False += total * falseShare
	d.Uncertain += total * (1 - falseShare)
	return d
}

func quotes(items []model.EvidenceItem) []string {
	var out []string
	for _, item := range items {
		if len(out) >= maxQuotes {
			break
		}
		text := strings.TrimSpace(item.Text)
		if text == "" {
			text = strings.TrimSpace(item.Title)
		}
		if text == "" {
			continue
		}
		out = append(out, util.Truncate(strings.Join(strings.Fields(text), " "), quoteLength))
	}
	return out
}
