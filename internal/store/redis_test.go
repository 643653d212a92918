package store

import "testing"

func TestParseMessageWellFormed(t *testing.T) {
	data := `{"id":"01J7","content":"hello","sender_id":"u1","sender_name":"alice","ts":1700000000000}`
	msg, ok := parseMessage(data)
	if !ok {
		t.Fatal("expected well-formed message to parse")
	}
	if msg.ID != "01J7" || msg.SenderID != "u1" || msg.Content != "hello" {
		t.Fatalf("unexpected parse result: %+v", msg)
	}
}

func TestParseMessageDiscardsMalformed(t *testing.T) {
	cases := []string{
		"not json at all",
		`"just a string"`,
		`{}`,
		`{"id":"x"}`,                            // no sender, no content
		`{"content":"hi","sender_id":"u1"}`,     // no id
		`{"id":"x","sender_id":"u1","content":""}`, // empty content
	}
	for _, data := range cases {
		if _, ok := parseMessage(data); ok {
			t.Fatalf("expected %q to be discarded", data)
		}
	}
}
