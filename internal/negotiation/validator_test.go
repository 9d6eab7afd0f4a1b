package negotiation

import (
	"reflect"
	"testing"
)

// testRoster builds a roster of manual participants; the first id is the
// coordinator.
func testRoster(t *testing.T, ids ...string) *Roster {
	t.Helper()
	participants := make([]Participant, len(ids))
	for i, id := range ids {
		participants[i] = NewManual(id, 1)
	}
	r, err := NewRoster(participants)
	if err != nil {
		t.Fatalf("NewRoster(%v): %v", ids, err)
	}
	return r
}

func seg(pairs ...string) []Utterance {
	out := make([]Utterance, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Utterance{Speaker: pairs[i], Text: pairs[i+1], Sequence: i / 2})
	}
	return out
}

func TestValidatorCandidateIndex(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		segment []Utterance
		want    int
	}{
		{
			name: "marker leads after whitespace",
			segment: seg(
				"moderator", "まずは意見を聞かせてください",
				"moderator", "  \n【合意確定】\n【最終合意プラン】一日目は京都へ",
			),
			want: 1,
		},
		{
			name: "final plan marker anywhere in the utterance",
			segment: seg(
				"moderator", "【合意確定】では確定します。\nプラン:\n【最終合意プラン】詳細は以下",
			),
			want: 0,
		},
		{
			name: "agreement marker not leading",
			segment: seg(
				"moderator", "そろそろ【合意確定】としたいのですが【最終合意プラン】",
			),
			want: -1,
		},
		{
			name: "final plan marker missing",
			segment: seg(
				"moderator", "【合意確定】これで決まりです",
			),
			want: -1,
		},
		{
			name: "markers from a non-coordinator do not count",
			segment: seg(
				"traveler_A", "【合意確定】【最終合意プラン】勝手に宣言",
			),
			want: -1,
		},
		{
			name:    "empty segment",
			segment: nil,
			want:    -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.CandidateIndex(tt.segment, "moderator"); got != tt.want {
				t.Errorf("CandidateIndex = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidatorValidate(t *testing.T) {
	roster := testRoster(t, "moderator", "traveler_A", "traveler_B")
	v := NewValidator()

	t.Run("all affirmed before candidate", func(t *testing.T) {
		segment := seg(
			"moderator", "プランXでどうでしょう",
			"traveler_A", "賛成です",
			"traveler_B", "了承します",
			"moderator", "【合意確定】\n【最終合意プラン】プランX",
		)
		res := v.Validate(segment, roster)
		if !res.Valid {
			t.Fatalf("Valid = false, unaffirmed %v", res.Unaffirmed)
		}
		if res.CandidateIndex != 3 {
			t.Errorf("CandidateIndex = %d, want 3", res.CandidateIndex)
		}
		if len(res.Unaffirmed) != 0 {
			t.Errorf("Unaffirmed = %v, want empty", res.Unaffirmed)
		}
	})

	t.Run("affirmation after candidate does not count", func(t *testing.T) {
		segment := seg(
			"moderator", "プランXでどうでしょう",
			"traveler_A", "賛成です",
			"moderator", "【合意確定】\n【最終合意プラン】プランX",
			"traveler_B", "同意します",
		)
		res := v.Validate(segment, roster)
		if res.Valid {
			t.Fatal("Valid = true, want false")
		}
		if !reflect.DeepEqual(res.Unaffirmed, []string{"traveler_B"}) {
			t.Errorf("Unaffirmed = %v, want [traveler_B]", res.Unaffirmed)
		}
	})

	t.Run("no candidate marks everyone unaffirmed", func(t *testing.T) {
		segment := seg(
			"traveler_A", "賛成です",
			"traveler_B", "同意します",
		)
		res := v.Validate(segment, roster)
		if res.Valid || res.CandidateIndex != -1 {
			t.Fatalf("res = %+v, want invalid with index -1", res)
		}
		if !reflect.DeepEqual(res.Unaffirmed, []string{"traveler_A", "traveler_B"}) {
			t.Errorf("Unaffirmed = %v", res.Unaffirmed)
		}
	})

	t.Run("any affirmation phrase suffices", func(t *testing.T) {
		segment := seg(
			"traveler_A", "その案に同意します",
			"traveler_B", "細部も含めて了承です",
			"moderator", "【合意確定】【最終合意プラン】確定",
		)
		if res := v.Validate(segment, roster); !res.Valid {
			t.Errorf("Valid = false, unaffirmed %v", res.Unaffirmed)
		}
	})
}

func TestValidatorCustomMarkers(t *testing.T) {
	roster := testRoster(t, "lead", "member_1", "member_2")
	v := &Validator{
		AgreementMarker: "【AGREE】",
		FinalPlanMarker: "【FINAL_PLAN】",
		AffirmPhrases:   []string{"agreed", "fine by me"},
	}

	segment := seg(
		"lead", "shall we settle on option two?",
		"member_1", "agreed",
		"member_2", "fine by me",
		"lead", "【AGREE】\nwrapping up.\n【FINAL_PLAN】 option two, departure at nine",
	)

	res := v.Validate(segment, roster)
	if !res.Valid {
		t.Fatalf("Valid = false, unaffirmed %v", res.Unaffirmed)
	}
	if res.CandidateIndex != 3 {
		t.Errorf("CandidateIndex = %d, want 3", res.CandidateIndex)
	}

	// Phrases are case-sensitive substrings.
	segment[1].Text = "AGREED"
	res = v.Validate(segment, roster)
	if res.Valid {
		t.Error("Valid = true with case-mismatched affirmation")
	}
}
