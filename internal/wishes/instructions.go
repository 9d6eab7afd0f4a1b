package wishes

import (
	"fmt"
	"strings"
)

// TravelerRoles is the fixed roster order following the coordinator.
var TravelerRoles = []string{"traveler_A", "traveler_B", "traveler_C", "traveler_D"}

// travelerLabels maps roster ids to display names.
var travelerLabels = map[string]string{
	"traveler_A": "旅行者A",
	"traveler_B": "旅行者B",
	"traveler_C": "旅行者C",
	"traveler_D": "旅行者D",
}

// Label returns the display name for a roster id, falling back to the id
// itself.
func Label(role string) string {
	if l, ok := travelerLabels[role]; ok {
		return l
	}
	return role
}

// AgentInstruction builds the role instruction for one negotiating
// participant: their public wishes verbatim, their private wishes to
// honor without disclosure, and the negotiation policy.
func AgentInstruction(name string, sp Split) string {
	var b strings.Builder
	fmt.Fprintf(&b, "あなたは交渉参加者の%sです。\n", name)
	b.WriteString("【目的】合意を目指し、自然言語の対話のみで形成する。\n")
	b.WriteString("【公開希望】\n")
	for _, w := range sp.Public {
		fmt.Fprintf(&b, "・%s\n", w)
	}
	b.WriteString("【非公開希望】（他者に一切開示禁止。内容を直接言及せず、満たす／守る方向で交渉する）\n")
	for _, w := range sp.Private {
		fmt.Fprintf(&b, "・%s\n", w)
	}
	b.WriteString("【ポリシー】\n" +
		"1) ある希望が受諾されそうにない場合には、譲歩し、他の希望を満たす方向に切り替える。\n" +
		"2) 合意受諾前に、公開・非公開の両希望が全て満たされているかを自己確認する。\n" +
		"【交渉ルール】\n" +
		"- 交渉は自然言語のみで行う（表・図・PDF・CSV・数値資料などのファイルは使用禁止）。\n" +
		"- 提案・修正・理由は文章のみで簡潔に述べる。\n" +
		"- 他者案には「賛成」「条件付き賛成」「反対」を明確に示す。\n" +
		"- 自分の非公開希望を守るため、具体的内容は明かさずに表現する。\n")
	return b.String()
}

// ModeratorInstruction builds the coordinator's instruction: fair turn
// management, no speaking for participants, and the exact two-marker
// contract for declaring agreement. The markers and affirmation phrases
// are injected so the instruction always matches the validator.
func ModeratorInstruction(agreementMarker, finalPlanMarker string, affirmPhrases []string) string {
	phrases := make([]string, len(affirmPhrases))
	for i, p := range affirmPhrases {
		phrases[i] = "『" + p + "』"
	}

	var b strings.Builder
	b.WriteString("あなたは旅行計画会議の司会者です。参加者は旅行者A,旅行者B,旅行者C,旅行者Dの4名です。\n" +
		"【役割】\n" +
		"- 各旅行者の意見を公平に引き出し、自然言語のみで合意形成を進める。\n" +
		"【ルール】\n" +
		"- 発言は自動的に 司会→各旅行者(順番)→司会→… の順で進む。\n" +
		"- 旅行者A〜Dの発言をあなたが作ってはいけない。\n" +
		"- 交渉では表・図・PDF・CSV・数値資料などの外部ファイルは使用しない。\n" +
		"- 本会議は『口頭合意の形成』のみを扱い、外部作業（予約・問い合わせ・見積・資料収集）、" +
		"役割分担、提出期限・締切の提示を一切行わない。\n" +
		"【合意の扱い】\n")
	fmt.Fprintf(&b,
		"- 各旅行者が明確に%sなどの語で最終案への同意を表明した場合のみ、"+
			"そのタイミングであなたはテキスト中に必ず『%s』という語を含めること。\n",
		strings.Join(phrases, ""), agreementMarker)
	fmt.Fprintf(&b,
		"- 合意が確定したときのあなたの最終発話には、以下を必ず含めること：\n"+
			"  1) メッセージの最初の行に『%s』という語だけ書き、\n"+
			"  2) 続けて、『%s』から始まる、合意した旅行プラン全文の要約"+
			"（行き先・各日の大まかな行程・宿泊・食事・予算の目安などを日本語で整理する）\n"+
			"- 『%s』は1つのメッセージの中に書き、別メッセージには分割しない。\n",
		agreementMarker, finalPlanMarker, finalPlanMarker)
	b.WriteString("【注意】\n" +
		"【ルール】や【合意の扱い】を復唱したり、参加者に説明したりしないこと。\n")
	return b.String()
}

// TaskPrompt is the shared opening context for every generated
// participant.
func TaskPrompt() string {
	return "あなたたちは4人の旅行者と司会です。" +
		"それぞれの希望条件を前提に、2泊3日の国内旅行計画を合意してください。" +
		"最終的にはできるだけ詳細に予算、各日のプランをまとめてください。" +
		"話し合いを始めてください。"
}
