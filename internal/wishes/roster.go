package wishes

import (
	"github.com/parleyhq/parley/internal/negotiation"
)

// ModeratorID is the coordinator's fixed roster id.
const ModeratorID = "moderator"

// RosterSpecs assembles the standard negotiation roster: the moderator
// first, then the four travelers in fixed order. Travelers named in
// aiTravelers are collaborator-driven with a wish-aware instruction;
// everyone else takes live human input.
func RosterSpecs(set Set, aiTravelers []string, agreementMarker, finalPlanMarker string, affirmPhrases []string, moderatorModel, agentModel string) []negotiation.ParticipantSpec {
	ai := make(map[string]bool, len(aiTravelers))
	for _, t := range aiTravelers {
		ai[t] = true
	}

	specs := []negotiation.ParticipantSpec{{
		ID:          ModeratorID,
		Role:        negotiation.RoleGenerated,
		Instruction: ModeratorInstruction(agreementMarker, finalPlanMarker, affirmPhrases),
		Model:       moderatorModel,
	}}

	for _, traveler := range TravelerRoles {
		if !ai[traveler] {
			specs = append(specs, negotiation.ParticipantSpec{
				ID:   traveler,
				Role: negotiation.RoleManual,
			})
			continue
		}
		label := Label(traveler)
		specs = append(specs, negotiation.ParticipantSpec{
			ID:          traveler,
			Role:        negotiation.RoleGenerated,
			Instruction: AgentInstruction(label, set[label]),
			Model:       agentModel,
		})
	}
	return specs
}
