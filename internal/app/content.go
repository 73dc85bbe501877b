package app

// Activity is one block on the community activities page.
type Activity struct {
	Title       string
	Description string
	Services    []string
}

var Activities = []Activity{
	{
		Title:       "生活相談・支援",
		Description: "寿地区では、様々な生活相談や支援活動が行われています。",
		Services:    []string{"生活保護の申請サポート", "住居確保給付金の相談", "医療・福祉サービスの案内", "各種行政手続きの支援"},
	},
	{
		Title:       "就労支援",
		Description: "仕事を探している方向けの様々な支援プログラムがあります。",
		Services:    []string{"職業訓練プログラム", "求人情報の提供", "履歴書作成サポート", "面接対策講座"},
	},
	{
		Title:       "医療・健康支援",
		Description: "健康管理や医療アクセスをサポートする取り組みです。",
		Services:    []string{"無料健康相談", "医療機関への同行支援", "保険証の取得サポート", "健康診断の案内"},
	},
	{
		Title:       "地域交流イベント",
		Description: "地域の絆を深めるための様々なイベントを開催しています。",
		Services:    []string{"季節の交流会", "食事会・炊き出し", "文化・スポーツイベント", "地域清掃活動"},
	},
}
