package intent

import "testing"

func TestSegmentIntentValidate(t *testing.T) {
	cases := []struct {
		name    string
		seg     SegmentIntent
		wantErr bool
	}{
		{"valid", SegmentIntent{Text: "Hello.", PauseAfter: 0.3}, false},
		{"empty text rejected", SegmentIntent{Text: "", PauseAfter: 0}, true},
		{"blank text rejected", SegmentIntent{Text: "   ", PauseAfter: 0}, true},
		{"negative pause rejected", SegmentIntent{Text: "Hi.", PauseAfter: -1}, true},
		{"zero pause accepted", SegmentIntent{Text: "Hi.", PauseAfter: 0}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.seg.Validate()
			if (err != nil) != c.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}

func TestScriptIntentValidate(t *testing.T) {
	empty := ScriptIntent{}
	if err := empty.Validate(); err == nil {
		t.Error("expected error for empty script intent")
	}

	valid := ScriptIntent{Segments: []SegmentIntent{{Text: "Hello.", PauseAfter: 0.3, SentenceEnd: true}}}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
}

func TestScriptIntentPlainText(t *testing.T) {
	si := ScriptIntent{Segments: []SegmentIntent{
		{Text: "Hello."},
		{Text: "World."},
	}}
	got := si.PlainText()
	want := "Hello. World."
	if got != want {
		t.Errorf("PlainText() = %q, want %q", got, want)
	}
}

func TestScriptIntentRoundTrip(t *testing.T) {
	si := ScriptIntent{
		Segments: []SegmentIntent{
			{Text: "Hello.", PauseAfter: 0.3, Emphasis: []string{"Hello"}, SentenceEnd: true},
		},
	}

	data, err := si.Serialize()
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	got, err := ParseScriptIntent(data)
	if err != nil {
		t.Fatalf("ParseScriptIntent() error = %v", err)
	}

	if len(got.Segments) != 1 || got.Segments[0].Text != "Hello." {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestIntentTimingMapValidate(t *testing.T) {
	good := IntentTimingMap{
		Segments: []TimingSegment{
			{SegmentIdx: 0, StartTime: 0, EndTime: 1.0, PauseAfter: 0.3},
			{SegmentIdx: 1, StartTime: 1.3, EndTime: 2.0, PauseAfter: 0},
		},
		TotalDuration: 2.0,
		FPS:           25,
	}
	if err := good.Validate(); err != nil {
		t.Errorf("expected valid timing map, got %v", err)
	}

	overlap := IntentTimingMap{
		Segments: []TimingSegment{
			{SegmentIdx: 0, StartTime: 0, EndTime: 1.0, PauseAfter: 0.3},
			{SegmentIdx: 1, StartTime: 1.0, EndTime: 2.0, PauseAfter: 0},
		},
		TotalDuration: 2.0,
		FPS:           25,
	}
	if err := overlap.Validate(); err == nil {
		t.Error("expected error: second segment starts before previous end+pause")
	}

	shortTotal := IntentTimingMap{
		Segments: []TimingSegment{
			{SegmentIdx: 0, StartTime: 0, EndTime: 1.0, PauseAfter: 0.3},
		},
		TotalDuration: 1.0,
		FPS:           25,
	}
	if err := shortTotal.Validate(); err == nil {
		t.Error("expected error: total_duration shorter than end+pause")
	}
}

func TestIntentTimingMapFrameCount(t *testing.T) {
	m := IntentTimingMap{TotalDuration: 2.0, FPS: 25}
	if got := m.FrameCount(); got != 50 {
		t.Errorf("FrameCount() = %d, want 50", got)
	}
}

func TestIntentMaskClamp(t *testing.T) {
	m := IntentMask{-1, 0, 0.5, 1.0, 1.3, 2.0}
	m.Clamp()
	want := IntentMask{0, 0, 0.5, 1.0, 1.3, 1.3}
	for i := range want {
		if m[i] != want[i] {
			t.Errorf("Clamp()[%d] = %f, want %f", i, m[i], want[i])
		}
	}
}
