package analysis

import "testing"

func TestDecodeJSONPlain(t *testing.T) {
	var out struct {
		Topic string `json:"topic"`
	}
	if err := decodeJSON(`{"topic":"pricing"}`, &out); err != nil {
		t.Fatal(err)
	}
	if out.Topic != "pricing" {
		t.Errorf("topic = %q", out.Topic)
	}
}

func TestDecodeJSONCodeFence(t *testing.T) {
	raw := "```json\n{\"topic\":\"pricing\"}\n```"
	var out struct {
		Topic string `json:"topic"`
	}
	if err := decodeJSON(raw, &out); err != nil {
		t.Fatal(err)
	}
	if out.Topic != "pricing" {
		t.Errorf("topic = %q", out.Topic)
	}
}

func TestDecodeJSONEmbeddedObject(t *testing.T) {
	raw := `Sure! Here is the classification: {"topic":"pricing","intensity":"high"} Hope this helps.`
	var out struct {
		Topic     string `json:"topic"`
		Intensity string `json:"intensity"`
	}
	if err := decodeJSON(raw, &out); err != nil {
		t.Fatal(err)
	}
	if out.Topic != "pricing" || out.Intensity != "high" {
		t.Errorf("got %+v", out)
	}
}

func TestDecodeJSONNoObject(t *testing.T) {
	var out struct{}
	if err := decodeJSON("I could not classify this post.", &out); err == nil {
		t.Error("expected an error for prose with no JSON object")
	}
}
