package model

import "testing"

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }

// ── VA 完整性 ──

func TestRecomputeCompleteness_VAZeroIsComplete(t *testing.T) {
	// v=0.0 / a=0.0 是用户明确设置的合法值，不等于"未标注"
	l := EmotionLabel{VValue: f64(0), AValue: f64(0)}
	l.RecomputeCompleteness()

	if !l.VAComplete {
		t.Error("V=0.0 且 A=0.0 时 VAComplete 应为 true")
	}
}

func TestRecomputeCompleteness_VAMissingOne(t *testing.T) {
	cases := []struct {
		name string
		v    *float64
		a    *float64
	}{
		{"缺A", f64(0.5), nil},
		{"缺V", nil, f64(-0.3)},
		{"全缺", nil, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := EmotionLabel{VValue: tc.v, AValue: tc.a}
			l.RecomputeCompleteness()
			if l.VAComplete {
				t.Error("VA 任一值缺失时 VAComplete 应为 false")
			}
		})
	}
}

// ── 离散情感完整性 ──

func TestRecomputeCompleteness_NeutralNoSubEmotion(t *testing.T) {
	// neutral 大类无需子情感，VA 完整即可
	l := EmotionLabel{
		VValue:        f64(0.1),
		AValue:        f64(0.2),
		EmotionType:   str(EmotionTypeNeutral),
		PatientStatus: str("stable"),
	}
	l.RecomputeCompleteness()

	if !l.DiscreteComplete {
		t.Error("neutral 且 VA 完整、患者状态已设置时 DiscreteComplete 应为 true")
	}
}

func TestRecomputeCompleteness_NonNeutralRequiresSubEmotion(t *testing.T) {
	l := EmotionLabel{
		VValue:        f64(0.1),
		AValue:        f64(0.2),
		EmotionType:   str(EmotionTypeNonNeutral),
		PatientStatus: str("stable"),
	}
	l.RecomputeCompleteness()
	if l.DiscreteComplete {
		t.Error("non-neutral 缺少子情感时 DiscreteComplete 应为 false")
	}

	l.DiscreteEmotion = str("sad")
	l.RecomputeCompleteness()
	if !l.DiscreteComplete {
		t.Error("non-neutral 且子情感已设置时 DiscreteComplete 应为 true")
	}
}

func TestRecomputeCompleteness_DiscreteGatedOnVA(t *testing.T) {
	// 离散完整性以 VA 完整为前提
	l := EmotionLabel{
		EmotionType:     str(EmotionTypeNonNeutral),
		DiscreteEmotion: str("angry"),
		PatientStatus:   str("stable"),
	}
	l.RecomputeCompleteness()

	if l.DiscreteComplete {
		t.Error("VA 未完成时 DiscreteComplete 应为 false")
	}
}

func TestRecomputeCompleteness_MissingPatientStatus(t *testing.T) {
	l := EmotionLabel{
		VValue:      f64(0.1),
		AValue:      f64(0.2),
		EmotionType: str(EmotionTypeNeutral),
	}
	l.RecomputeCompleteness()

	if l.DiscreteComplete {
		t.Error("患者状态缺失时 DiscreteComplete 应为 false")
	}
}

// ── 幂等性 ──

func TestRecomputeCompleteness_Idempotent(t *testing.T) {
	l := EmotionLabel{
		VValue:        f64(0),
		AValue:        f64(0.7),
		EmotionType:   str(EmotionTypeNeutral),
		PatientStatus: str("stable"),
		// 模拟从旧数据读入的陈旧标志
		VAComplete:       false,
		DiscreteComplete: false,
	}

	l.RecomputeCompleteness()
	va1, disc1 := l.VAComplete, l.DiscreteComplete
	l.RecomputeCompleteness()

	if l.VAComplete != va1 || l.DiscreteComplete != disc1 {
		t.Error("重复计算结果应一致")
	}
	if !l.VAComplete || !l.DiscreteComplete {
		t.Error("陈旧标志应被重算覆盖")
	}
}
