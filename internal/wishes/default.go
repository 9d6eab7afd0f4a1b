package wishes

// DefaultText is the built-in wish set used when no wishes file is given:
// four travelers with overlapping public preferences and conflicting
// private constraints.
const DefaultText = `[旅行者A 公開]

- 自然の多い場所（海や山）に行きたい
- カヌーやハイキングなど体を動かす体験をしたい
- ご当地の郷土料理を食べたい
- 温泉に入りたい
- 移動は新幹線か特急
- 出発は午前中
- 夜は全員で一緒に食事

[旅行者A 非公開]

- 片道4時間以内
- 宿泊費は1泊6,000円以内
- 乗換えは少なくしたい
- 混雑する観光地は避けたい
- 和室で眠りたい

[旅行者B 公開]

- ご当地グルメやお酒を楽しみたい
- 温泉付きの宿
- 有名な観光名所を少し回りたい
- 景観の良い場所で写真を撮りたい
- 宿はできれば個室

[旅行者B 非公開]

- 移動は片道3時間以内
- 高速バスは不可
- 徒歩観光は1時間以内
- 夜は早めに切り上げたい
- 宿は簡素すぎる場所は避けたい

[旅行者C 公開]

- 観光は少しだけできれば満足
- 高価なアクティビティは不要
- 全員と一緒に過ごすことを最優先
- お土産は小さなもので良い
- 宿は質素でOK
- 食事は安い定食屋で十分

[旅行者C 非公開]

- 移動は片道2時間以内
- 高級料理は避けたい
- 混雑する観光地は避けたい
- 夜は静かに過ごしたい
- 宿泊は全員同じ宿にしたい
- 旅行費用は2万円以内

[旅行者D 公開]

- 歴史的な街並みや文化遺産を巡りたい
- 地元の伝統工芸や体験教室に参加したい
- 美術館や博物館にも行きたい
- 落ち着いた雰囲気の宿に泊まりたい
- 食事は地元の老舗店で味わいたい
- 朝はゆっくり出発したい

[旅行者D 非公開]

- 予算は交通費込みで3万円以内
- 宿泊は静かで清潔な場所を希望
- 団体行動より少人数行動を好む
- 食事に待ち時間が長い店は避けたい
- 移動中に読書できる時間がほしい
`
