package domain

import (
	"encoding/json"
	"testing"
)

func intPtr(n int) *int { return &n }

func TestEvaluationAwardedXP(t *testing.T) {
	t.Run("actualXP wins", func(t *testing.T) {
		e := &Evaluation{ActualXP: intPtr(50), XPEarned: intPtr(30), Score: 80}
		if got := e.AwardedXP(); got != 50 {
			t.Errorf("AwardedXP() = %d, want 50", got)
		}
	})

	t.Run("xpEarned next", func(t *testing.T) {
		e := &Evaluation{XPEarned: intPtr(30), Score: 80}
		if got := e.AwardedXP(); got != 30 {
			t.Errorf("AwardedXP() = %d, want 30", got)
		}
	})

	t.Run("score fallback", func(t *testing.T) {
		e := &Evaluation{Score: 80}
		if got := e.AwardedXP(); got != 80 {
			t.Errorf("AwardedXP() = %d, want 80", got)
		}
	})

	t.Run("zero when nothing set", func(t *testing.T) {
		e := &Evaluation{}
		if got := e.AwardedXP(); got != 0 {
			t.Errorf("AwardedXP() = %d, want 0", got)
		}
	})

	t.Run("explicit zero actualXP beats score", func(t *testing.T) {
		e := &Evaluation{ActualXP: intPtr(0), Score: 80}
		if got := e.AwardedXP(); got != 0 {
			t.Errorf("AwardedXP() = %d, want 0", got)
		}
	})
}

func TestEvaluationTypeIsCompletion(t *testing.T) {
	cases := []struct {
		typ  EvaluationType
		want bool
	}{
		{EvalTypeTask, false},
		{EvalTypeProgram, true},
		{EvalTypePBLComplete, true},
		{EvalTypeAssessmentComplete, true},
		{EvalTypeDiscoveryComplete, true},
	}
	for _, c := range cases {
		if got := c.typ.IsCompletion(); got != c.want {
			t.Errorf("%s.IsCompletion() = %v, want %v", c.typ, got, c.want)
		}
	}
}

func TestEvaluationFeedbackCache(t *testing.T) {
	e := &Evaluation{}

	if _, ok := e.FeedbackFor("en"); ok {
		t.Error("FeedbackFor(en) should miss on empty evaluation")
	}

	blob := json.RawMessage(`{"summary":"well done"}`)
	e.SetFeedbackFor("en", blob)

	got, ok := e.FeedbackFor("en")
	if !ok {
		t.Fatal("FeedbackFor(en) should hit after SetFeedbackFor")
	}
	if string(got) != string(blob) {
		t.Errorf("FeedbackFor(en) = %s, want %s", got, blob)
	}

	if _, ok := e.FeedbackFor("de"); ok {
		t.Error("FeedbackFor(de) should miss for uncached language")
	}
}
