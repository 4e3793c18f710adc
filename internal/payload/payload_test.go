package payload

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
)

func TestContentPart_TextWireFormat(t *testing.T) {
	data, err := json.Marshal(TextPart("hello"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"type":"text","text":"hello"}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestContentPart_ImageWireFormat(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString([]byte("raw-image-bytes"))
	data, err := json.Marshal(ImagePart(b64, "image/png", DetailLow))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded struct {
		Type     string `json:"type"`
		ImageURL struct {
			URL    string `json:"url"`
			Detail string `json:"detail"`
		} `json:"image_url"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Type != "image_url" {
		t.Errorf("expected type image_url, got %q", decoded.Type)
	}
	if !strings.HasPrefix(decoded.ImageURL.URL, "data:image/png;base64,") {
		t.Errorf("expected data URL prefix, got %q", decoded.ImageURL.URL)
	}
	if !strings.HasSuffix(decoded.ImageURL.URL, b64) {
		t.Error("data URL should end with the base64 payload")
	}
	if decoded.ImageURL.Detail != "low" {
		t.Errorf("expected detail low, got %q", decoded.ImageURL.Detail)
	}
}

func TestRequest_WireFieldNames(t *testing.T) {
	req := Request{
		Model: "gpt-4o",
		Messages: []Message{
			{Role: RoleSystem, Content: "prompt"},
			{Role: RoleUser, Content: []ContentPart{TextPart("q")}},
		},
		MaxTokens:   4096,
		Temperature: 0.0,
	}
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"model", "messages", "max_tokens", "temperature"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing wire field %q", key)
		}
	}

	messages, ok := decoded["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("expected 2 messages on the wire, got %v", decoded["messages"])
	}
	system := messages[0].(map[string]any)
	if _, ok := system["content"].(string); !ok {
		t.Error("system content must serialize as a plain string")
	}
	user := messages[1].(map[string]any)
	if _, ok := user["content"].([]any); !ok {
		t.Error("user content must serialize as a part array")
	}
}

func TestImageDetail_Valid(t *testing.T) {
	for _, d := range []ImageDetail{DetailLow, DetailHigh, DetailAuto} {
		if !d.Valid() {
			t.Errorf("%q should be valid", d)
		}
	}
	for _, d := range []ImageDetail{"", "medium", "HIGH"} {
		if d.Valid() {
			t.Errorf("%q should be invalid", d)
		}
	}
}
