package conversation

import "testing"

func TestParseHistory(t *testing.T) {
	msgs, err := ParseHistory(`[{"text":"hi","fromMe":false},{"text":"hey you","fromMe":true,"timestamp":"x"}]`)
	if err != nil {
		t.Fatalf("ParseHistory: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2", len(msgs))
	}
	if msgs[1].Text != "hey you" || !msgs[1].FromMe {
		t.Errorf("msgs[1] = %+v", msgs[1])
	}
}

func TestParseHistory_Blank(t *testing.T) {
	msgs, err := ParseHistory("  ")
	if err != nil {
		t.Fatalf("ParseHistory: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("len = %d, want 0", len(msgs))
	}
}

func TestParseHistory_Malformed(t *testing.T) {
	if _, err := ParseHistory(`{not json`); err == nil {
		t.Fatal("expected error")
	}
}

func TestSelfAuthored(t *testing.T) {
	got := SelfAuthored([]Message{{Text: "a"}, {Text: "b", FromMe: true}, {Text: "c", FromMe: true}})
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Errorf("SelfAuthored = %v", got)
	}
}

func TestRecent(t *testing.T) {
	h := []Message{{Text: "1"}, {Text: "2"}, {Text: "3"}}
	if got := Recent(h, 2); len(got) != 2 || got[0].Text != "2" {
		t.Errorf("Recent(2) = %v", got)
	}
	if got := Recent(h, 5); len(got) != 3 {
		t.Errorf("Recent(5) len = %d, want 3", len(got))
	}
	if got := Recent(h, 0); got != nil {
		t.Errorf("Recent(0) = %v, want nil", got)
	}
}

func TestJoinLower(t *testing.T) {
	if got := JoinLower([]Message{{Text: "Hi"}, {Text: "THERE"}}); got != "hi there" {
		t.Errorf("JoinLower = %q", got)
	}
}
