package domain

import (
	"fmt"
	"sort"
)

// AttentionType enumerates the service categories a customer can queue for.
type AttentionType string

const (
	AttentionCaja           AttentionType = "CAJA"
	AttentionPersonalBanker AttentionType = "PERSONAL_BANKER"
	AttentionEmpresas       AttentionType = "EMPRESAS"
	AttentionGerencia       AttentionType = "GERENCIA"
)

// AttentionProfile is the static configuration attached to an attention type:
// the ticket number prefix, the average handling time used for wait estimation
// and the scheduling priority (higher is served first).
type AttentionProfile struct {
	Type                  AttentionType
	Prefix                string
	AverageServiceMinutes int
	Priority              int
}

var attentionProfiles = map[AttentionType]AttentionProfile{
	AttentionCaja:           {Type: AttentionCaja, Prefix: "CA", AverageServiceMinutes: 5, Priority: 1},
	AttentionPersonalBanker: {Type: AttentionPersonalBanker, Prefix: "PB", AverageServiceMinutes: 15, Priority: 2},
	AttentionEmpresas:       {Type: AttentionEmpresas, Prefix: "EM", AverageServiceMinutes: 20, Priority: 2},
	AttentionGerencia:       {Type: AttentionGerencia, Prefix: "GE", AverageServiceMinutes: 30, Priority: 3},
}

// ProfileFor returns the profile for the given attention type.
func ProfileFor(t AttentionType) (AttentionProfile, bool) {
	profile, ok := attentionProfiles[t]
	return profile, ok
}

// ParseAttentionType validates a raw attention type string.
func ParseAttentionType(raw string) (AttentionType, error) {
	t := AttentionType(raw)
	if _, ok := attentionProfiles[t]; !ok {
		return "", fmt.Errorf("unknown attention type %q", raw)
	}
	return t, nil
}

// AttentionProfiles returns all profiles ordered by descending priority.
// Types sharing a priority keep a stable order so scheduler ticks are
// deterministic.
func AttentionProfiles() []AttentionProfile {
	profiles := make([]AttentionProfile, 0, len(attentionProfiles))
	for _, p := range attentionProfiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].Priority != profiles[j].Priority {
			return profiles[i].Priority > profiles[j].Priority
		}
		return profiles[i].Type < profiles[j].Type
	})
	return profiles
}
