package wishes

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseText(t *testing.T) {
	txt := `
[旅行者A 公開]
- 京都に行きたい
- 電車で行きたい

[旅行者A 非公開]
- 寺院巡りはしたくない

[旅行者B]
- 大阪に行きたい

stray line outside a bullet
`
	set := ParseText(txt)

	a := set["旅行者A"]
	if !reflect.DeepEqual(a.Public, []string{"京都に行きたい", "電車で行きたい"}) {
		t.Errorf("A public = %v", a.Public)
	}
	if !reflect.DeepEqual(a.Private, []string{"寺院巡りはしたくない"}) {
		t.Errorf("A private = %v", a.Private)
	}

	// A header without a section defaults to public.
	b := set["旅行者B"]
	if !reflect.DeepEqual(b.Public, []string{"大阪に行きたい"}) {
		t.Errorf("B public = %v", b.Public)
	}
	if len(b.Private) != 0 {
		t.Errorf("B private = %v, want empty", b.Private)
	}
}

func TestParseTextDefaultSet(t *testing.T) {
	set := ParseText(DefaultText)

	want := []string{"旅行者A", "旅行者B", "旅行者C", "旅行者D"}
	if got := set.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Names = %v, want %v", got, want)
	}
	for _, name := range want {
		sp := set[name]
		if len(sp.Public) == 0 || len(sp.Private) == 0 {
			t.Errorf("%s: public=%d private=%d, want both non-empty",
				name, len(sp.Public), len(sp.Private))
		}
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wishes.json")
	content := `{
		"旅行者A": {"public": ["海に行きたい"], "private": ["予算3万円以内"]},
		"旅行者B": ["温泉に入りたい"]
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	set, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := set["旅行者A"].Private; !reflect.DeepEqual(got, []string{"予算3万円以内"}) {
		t.Errorf("A private = %v", got)
	}
	// A bare list is treated as public-only wishes.
	if got := set["旅行者B"].Public; !reflect.DeepEqual(got, []string{"温泉に入りたい"}) {
		t.Errorf("B public = %v", got)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wishes.yaml")
	content := "旅行者A:\n  public:\n    - 山に行きたい\n  private:\n    - 片道2時間以内\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	set, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := set["旅行者A"].Public; !reflect.DeepEqual(got, []string{"山に行きたい"}) {
		t.Errorf("public = %v", got)
	}
}

func TestLoadDefaultsAndErrors(t *testing.T) {
	set, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if len(set) != 4 {
		t.Errorf("default set size = %d, want 4", len(set))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

func TestBlocks(t *testing.T) {
	set := Set{
		"旅行者A": {Public: []string{"海"}, Private: []string{"安く"}},
		"旅行者B": {Public: []string{"山"}},
	}

	full := FullBlock(set)
	for _, want := range []string{"[旅行者A 公開]", "[旅行者A 非公開]", "- 海", "- 安く"} {
		if !strings.Contains(full, want) {
			t.Errorf("FullBlock missing %q:\n%s", want, full)
		}
	}
	// Empty sections render a placeholder bullet.
	if !strings.Contains(full, "- （なし）") {
		t.Errorf("FullBlock missing placeholder for B private:\n%s", full)
	}

	public := PublicBlock(set)
	if strings.Contains(public, "非公開") || strings.Contains(public, "安く") {
		t.Errorf("PublicBlock leaked private wishes:\n%s", public)
	}
}

func TestAgentInstructionContainsWishesAndPolicy(t *testing.T) {
	got := AgentInstruction("旅行者A", Split{
		Public:  []string{"海に行きたい"},
		Private: []string{"予算2万円以内"},
	})

	for _, want := range []string{
		"あなたは交渉参加者の旅行者Aです",
		"・海に行きたい",
		"・予算2万円以内",
		"【非公開希望】",
		"【ポリシー】",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("instruction missing %q", want)
		}
	}
}

func TestModeratorInstructionEmbedsMarkers(t *testing.T) {
	got := ModeratorInstruction("【合意確定】", "【最終合意プラン】", []string{"賛成", "同意", "了承"})

	for _, want := range []string{"【合意確定】", "【最終合意プラン】", "『賛成』", "『同意』", "『了承』", "司会者"} {
		if !strings.Contains(got, want) {
			t.Errorf("moderator instruction missing %q", want)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := Label("traveler_A"); got != "旅行者A" {
		t.Errorf("Label(traveler_A) = %q", got)
	}
	if got := Label("moderator"); got != "moderator" {
		t.Errorf("Label fallback = %q", got)
	}
}
