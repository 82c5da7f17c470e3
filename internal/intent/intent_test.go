package intent

import "testing"

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name  string
		query string
		mode  Mode
		want  Signals
	}{
		{
			name:  "plain query has no signals",
			query: "量子コンピュータ 仕組み",
			mode:  ModeGeneral,
			want:  Signals{},
		},
		{
			name:  "urgency vocabulary sets news urgent",
			query: "半導体 最新",
			mode:  ModeGeneral,
			want:  Signals{NewsUrgent: true},
		},
		{
			name:  "english urgency vocabulary sets news urgent",
			query: "quantum computing latest",
			mode:  ModeGeneral,
			want:  Signals{NewsUrgent: true},
		},
		{
			name:  "news mode forces urgency without vocabulary",
			query: "量子コンピュータ",
			mode:  ModeNews,
			want:  Signals{NewsUrgent: true},
		},
		{
			name:  "product vocabulary sets product info",
			query: "ノートPC おすすめ 比較",
			mode:  ModeGeneral,
			want:  Signals{ProductInfo: true},
		},
		{
			name:  "government vocabulary sets government info",
			query: "厚生労働省 統計",
			mode:  ModeGeneral,
			want:  Signals{GovernmentInfo: true},
		},
		{
			name:  "global mode sets global target only",
			query: "quantum computing",
			mode:  ModeGlobal,
			want:  Signals{GlobalTarget: true},
		},
		{
			name:  "signals are independent",
			query: "東京 最新 製品 価格",
			mode:  ModeGeneral,
			want:  Signals{NewsUrgent: true, ProductInfo: true, GovernmentInfo: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.query, tt.mode)
			if got != tt.want {
				t.Fatalf("Analyze(%q, %q) = %+v, want %+v", tt.query, tt.mode, got, tt.want)
			}
		})
	}
}

func TestAnalyzeIsPure(t *testing.T) {
	first := Analyze("速報 地震", ModeGeneral)
	for i := 0; i < 5; i++ {
		if got := Analyze("速報 地震", ModeGeneral); got != first {
			t.Fatalf("run %d: Analyze returned %+v, want stable %+v", i, got, first)
		}
	}
}
