package negotiation

import (
	"strings"
)

// Default consensus markers and affirmation phrases.
const (
	DefaultAgreementMarker = "【合意確定】"
	DefaultFinalPlanMarker = "【最終合意プラン】"
)

// DefaultAffirmPhrases returns the stock affirmation vocabulary.
func DefaultAffirmPhrases() []string {
	return []string{"賛成", "同意", "了承"}
}

// Validator decides whether an attempt segment constitutes a genuine
// agreement. It is stateless: every call examines one segment against one
// roster, nothing is remembered between calls.
type Validator struct {
	// AgreementMarker must open the coordinator's declaration (after
	// leading whitespace).
	AgreementMarker string

	// FinalPlanMarker must appear somewhere in the same declaration.
	FinalPlanMarker string

	// AffirmPhrases are matched case-sensitively as substrings; any one
	// suffices to affirm.
	AffirmPhrases []string
}

// NewValidator builds a validator with the default markers and phrases.
func NewValidator() *Validator {
	return &Validator{
		AgreementMarker: DefaultAgreementMarker,
		FinalPlanMarker: DefaultFinalPlanMarker,
		AffirmPhrases:   DefaultAffirmPhrases(),
	}
}

// Result is the outcome of one validation pass.
type Result struct {
	// Valid is true when a candidate exists and every non-coordinator
	// participant affirmed before it.
	Valid bool

	// CandidateIndex is the segment index of the candidate declaration,
	// or -1 when no candidate was found.
	CandidateIndex int

	// Unaffirmed lists roster members that never affirmed before the
	// candidate, in turn order. Empty when Valid.
	Unaffirmed []string
}

// CandidateIndex returns the segment index of the first coordinator
// utterance that opens with the agreement marker and contains the
// final-plan marker, or -1 when none qualifies. Marker placement matters:
// the agreement marker must lead, the final-plan marker may sit anywhere
// in the same utterance.
func (v *Validator) CandidateIndex(segment []Utterance, coordinatorID string) int {
	for i, u := range segment {
		if u.Speaker != coordinatorID {
			continue
		}
		text := strings.TrimLeft(u.Text, " \t\r\n")
		if strings.HasPrefix(text, v.AgreementMarker) && strings.Contains(u.Text, v.FinalPlanMarker) {
			return i
		}
	}
	return -1
}

// Validate checks a full attempt segment against the roster. A valid
// segment has a candidate declaration by the coordinator and, strictly
// before it, at least one affirming utterance from every other roster
// member. Participants who only spoke after the declaration do not count.
func (v *Validator) Validate(segment []Utterance, roster *Roster) Result {
	coordinator := roster.Coordinator().ID()

	idx := v.CandidateIndex(segment, coordinator)
	if idx < 0 {
		return Result{Valid: false, CandidateIndex: -1, Unaffirmed: ids(roster.Others())}
	}

	var unaffirmed []string
	for _, p := range roster.Others() {
		if !v.affirmedBefore(segment, idx, p.ID()) {
			unaffirmed = append(unaffirmed, p.ID())
		}
	}

	return Result{
		Valid:          len(unaffirmed) == 0,
		CandidateIndex: idx,
		Unaffirmed:     unaffirmed,
	}
}

// affirmedBefore reports whether the participant uttered any affirmation
// phrase strictly before the candidate index.
func (v *Validator) affirmedBefore(segment []Utterance, candidateIdx int, id string) bool {
	for _, u := range segment[:candidateIdx] {
		if u.Speaker != id {
			continue
		}
		for _, phrase := range v.AffirmPhrases {
			if strings.Contains(u.Text, phrase) {
				return true
			}
		}
	}
	return false
}

func ids(ps []Participant) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID()
	}
	return out
}
