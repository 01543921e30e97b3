package model

// NeutralReputationScore is assigned to channels missing from the reputation table
const NeutralReputationScore = 0.5

// ChannelReputation is looked up once per video and shared read-only for the run
type ChannelReputation struct {
	Score                 float64 `json:"score" yaml:"score"`       // 0.0-1.0, 0.5 = neutral/unknown
	Category              string  `json:"category" yaml:"category"` // e.g., "investigative", "wellness", "unknown"
	IsTrustedInvestigator bool    `json:"is_trusted_investigator" yaml:"trusted_investigator"`
}

// NeutralReputation returns the reputation of an unknown channel
func NeutralReputation() ChannelReputation {
	return ChannelReputation{
		Score:    NeutralReputationScore,
		Category: "unknown",
	}
}
