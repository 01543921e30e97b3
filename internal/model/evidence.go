package model

// RawEvidence is an ungrouped search hit as returned by a search backend
type RawEvidence struct {
	SourceName string `json:"source_name"`
	SourceType string `json:"source_type"` // Backend hint: web, news, press_release, scientific, youtube_counter
	URL        string `json:"url"`
	Title      string `json:"title,omitempty"`
	Text       string `json:"text"`
	ViewCount  int64  `json:"view_count,omitempty"` // Only meaningful for video sources
}

// Source type hints understood by the grouper
const (
	SourceTypeWeb          = "web"
	SourceTypeNews         = "news"
	SourceTypePressRelease = "press_release"
	SourceTypeScientific   = "scientific"
	SourceTypeVideo        = "youtube_counter"
)

// EvidenceItem is a grouped, weighted piece of evidence. Owned by the
// verification call that produced it.
type EvidenceItem struct {
	SourceName      string        `json:"source_name"`
	SourceType      string        `json:"source_type"`
	URL             string        `json:"url"`
	Title           string        `json:"title,omitempty"`
	Text            string        `json:"text"`
	ViewCount       int64         `json:"view_count,omitempty"`
	ValidationPower float64       `json:"validation_power"` // 0.0-1.0
	SelfReferential bool          `json:"self_referential"`
	SupportsClaim   bool          `json:"supports_claim"`
	Group           EvidenceGroup `json:"evidence_group"`
	Official        bool          `json:"official,omitempty"` // Government source
}

// EvidenceGroup classifies evidence by independence from the subject
type EvidenceGroup string

const (
	GroupIndependent    EvidenceGroup = "independent"
	GroupPressRelease   EvidenceGroup = "press_release"
	GroupScientific     EvidenceGroup = "scientific"
	GroupYouTubeCounter EvidenceGroup = "youtube_counter"
)

// GroupedEvidence holds evidence bucketed by group, in input order
type GroupedEvidence struct {
	Independent    []EvidenceItem `json:"independent"`
	PressRelease   []EvidenceItem `json:"press_release"`
	Scientific     []EvidenceItem `json:"scientific"`
	YouTubeCounter []EvidenceItem `json:"youtube_counter"`
}

// All returns every item across all groups
func (g GroupedEvidence) All() []EvidenceItem {
	all := make([]EvidenceItem, 0, g.Count())
	all = append(all, g.Independent...)
	all = append(all, g.PressRelease...)
	all = append(all, g.Scientific...)
	all = append(all, g.YouTubeCounter...)
	return all
}

// Count returns the number of items across all groups
func (g GroupedEvidence) Count() int {
	return len(g.Independent) + len(g.PressRelease) + len(g.Scientific) + len(g.YouTubeCounter)
}

// Power sums the validation power of a slice of items
func Power(items []EvidenceItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.ValidationPower
	}
	return total
}

// Video identifies the video whose claims are being verified
type Video struct {
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Channel string `json:"channel,omitempty"`
}
