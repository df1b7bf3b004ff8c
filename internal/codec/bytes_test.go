package codec

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBytesMarshalUsesBase64Wrapper(t *testing.T) {
	got, err := json.Marshal(Bytes{0xde, 0xad, 0xbe, 0xef})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(got) != `{"$base64":"3q2+7w=="}` {
		t.Errorf("Marshal = %s, want {\"$base64\":\"3q2+7w==\"}", got)
	}
}

func TestBytesMarshalEmpty(t *testing.T) {
	got, err := json.Marshal(Bytes{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(got) != `{"$base64":""}` {
		t.Errorf("Marshal = %s, want empty wrapper", got)
	}

	var b Bytes
	if err := json.Unmarshal(got, &b); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(b) != 0 {
		t.Errorf("expected empty slice, got %v", b)
	}
}

func TestBytesUnmarshalRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"plain string", `"3q2+7w=="`},
		{"missing member", `{"base64":"3q2+7w=="}`},
		{"url alphabet", `{"$base64":"3q2-7w"}`},
		{"not base64", `{"$base64":"!!!"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Bytes
			if err := json.Unmarshal([]byte(tt.input), &b); err == nil {
				t.Errorf("expected error for %s, got %v", tt.input, b)
			}
		})
	}
}

func TestBytesInsideStruct(t *testing.T) {
	type record struct {
		ID Bytes `json:"credential_id"`
	}

	data := []byte(`{"credential_id":{"$base64":"QTE="}}`)
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if string(r.ID) != "A1" {
		t.Errorf("ID = %q, want %q", r.ID, "A1")
	}
}

func TestAbbrev(t *testing.T) {
	id := []byte("a credential identifier that is long")

	short := Abbrev(id, 8)
	if !strings.HasSuffix(short, "…") {
		t.Errorf("Abbrev should end with an ellipsis when truncated, got %q", short)
	}
	if strings.TrimSuffix(short, "…") != Bytes(id).Std()[:8] {
		t.Errorf("Abbrev prefix mismatch: %q", short)
	}

	if got := Abbrev([]byte("A1"), 8); got != "QTE=" {
		t.Errorf("Abbrev of short id = %q, want %q", got, "QTE=")
	}
}

func TestURLRoundTrip(t *testing.T) {
	id := []byte{0xfb, 0xff, 0x01}
	s := URL(id)
	if strings.ContainsAny(s, "+/=") {
		t.Errorf("URL form must use the url alphabet without padding, got %q", s)
	}
	back, err := ParseURL(s)
	if err != nil {
		t.Fatalf("ParseURL failed: %v", err)
	}
	if !Bytes(back).Equal(id) {
		t.Errorf("ParseURL(URL(id)) = %v, want %v", back, id)
	}
}
