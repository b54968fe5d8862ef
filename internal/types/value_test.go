package types

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestValue_PreservesKeyOrder(t *testing.T) {
	input := `{"zeta":1,"alpha":{"y":true,"x":null},"mid":[3,"two",{"b":1,"a":2}]}`

	var v Value
	if err := json.Unmarshal([]byte(input), &v); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got := strings.Join(v.Keys(), ","); got != "zeta,alpha,mid" {
		t.Errorf("Keys() = %s", got)
	}

	out, err := json.Marshal(&v)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != input {
		t.Errorf("Marshal() = %s, want %s", out, input)
	}
}

func TestValue_NumberLiteralKept(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`{"id":12345678901234567890,"ratio":1.50}`), &v); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	id, _ := v.Get("id")
	if id.Kind != KindNumber || id.Literal != "12345678901234567890" {
		t.Errorf("id = %+v", id)
	}
	ratio, _ := v.Get("ratio")
	if ratio.Literal != "1.50" {
		t.Errorf("ratio literal = %q", ratio.Literal)
	}
}

func TestValue_TrailingData(t *testing.T) {
	var v Value
	if err := v.UnmarshalJSON([]byte(`{"a":1} {"b":2}`)); err == nil {
		t.Error("expected error for trailing data")
	}
}

func TestValue_Indent(t *testing.T) {
	v := Object(
		Member{Key: "name", Value: String("Jane <Doe>")},
		Member{Key: "tags", Value: Array(String("a"))},
	)

	got, err := v.Indent()
	if err != nil {
		t.Fatalf("Indent() error = %v", err)
	}
	want := "{\n  \"name\": \"Jane <Doe>\",\n  \"tags\": [\n    \"a\"\n  ]\n}"
	if got != want {
		t.Errorf("Indent() = %q, want %q", got, want)
	}
}

func TestValue_NullHandling(t *testing.T) {
	var result GenerationResult
	if err := json.Unmarshal([]byte(`{"profile":null,"forms":[]}`), &result); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if result.HasProfile() {
		t.Error("null profile should count as absent")
	}

	var nilValue *Value
	if !nilValue.IsNull() {
		t.Error("nil value should be null")
	}
	if Object().IsNull() {
		t.Error("empty object is a profile")
	}
}

func TestValue_Interface(t *testing.T) {
	v := Object(
		Member{Key: "age", Value: Number("34")},
		Member{Key: "ok", Value: Bool(true)},
		Member{Key: "ids", Value: Array(String("p1"))},
	)

	m, ok := v.Interface().(map[string]interface{})
	if !ok {
		t.Fatalf("Interface() returned %T", v.Interface())
	}
	if m["age"] != float64(34) || m["ok"] != true {
		t.Errorf("Interface() = %v", m)
	}
	if ids, ok := m["ids"].([]interface{}); !ok || ids[0] != "p1" {
		t.Errorf("ids = %v", m["ids"])
	}
}

func TestValue_YAMLOrder(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`{"zeta":"z","alpha":1.5,"flag":false,"none":null}`), &v); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	out, err := yaml.Marshal(&v)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	want := "zeta: z\nalpha: 1.5\nflag: false\nnone: null\n"
	if string(out) != want {
		t.Errorf("yaml = %q, want %q", out, want)
	}
}

func TestAnswer_Text(t *testing.T) {
	var form Form
	body := `{"form_id":"F1","form_title":"Intake","answers":[{"question":"Name?","answer":"Jane"},{"question":"Age?"}]}`
	if err := json.Unmarshal([]byte(body), &form); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if form.Answers[0].Text() != "Jane" {
		t.Errorf("Text() = %q", form.Answers[0].Text())
	}
	if form.Answers[1].Answer != nil || form.Answers[1].Text() != "" {
		t.Error("missing answer should be nil with empty text")
	}
}

func TestExtractionResult_AsGeneration(t *testing.T) {
	var result ExtractionResult
	body := `{"text":"x","profile":{"name":"Jane"},"forms":[{"form_id":"F1","form_title":"Intake","answers":[]}]}`
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if !result.HasProfile() {
		t.Fatal("expected profile")
	}
	gen := result.AsGeneration()
	if gen.Profile != result.Profile || len(gen.Forms) != 1 {
		t.Errorf("AsGeneration() = %+v", gen)
	}

	var empty *ExtractionResult
	if empty.HasProfile() || empty.AsGeneration() != nil {
		t.Error("nil extraction result should have no profile")
	}
}

func TestValue_IsFalsy(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{`null`, true},
		{`false`, true},
		{`""`, true},
		{`0`, true},
		{`-0.0`, true},
		{`0e10`, true},
		{`true`, false},
		{`"x"`, false},
		{`1`, false},
		{`{}`, false},
		{`[]`, false},
	}

	for _, tt := range tests {
		var v Value
		if err := json.Unmarshal([]byte(tt.input), &v); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", tt.input, err)
		}
		if got := v.IsFalsy(); got != tt.want {
			t.Errorf("IsFalsy(%s) = %v, want %v", tt.input, got, tt.want)
		}
	}

	var absent *Value
	if !absent.IsFalsy() {
		t.Error("absent value should be falsy")
	}
}

func TestHasProfile_FalsyProfiles(t *testing.T) {
	for _, profile := range []string{`null`, `false`, `""`, `0`} {
		var result GenerationResult
		if err := json.Unmarshal([]byte(`{"profile":`+profile+`,"forms":[]}`), &result); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if result.HasProfile() {
			t.Errorf("profile %s should count as no profile", profile)
		}

		var extraction ExtractionResult
		if err := json.Unmarshal([]byte(`{"text":"t","profile":`+profile+`}`), &extraction); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if extraction.HasProfile() {
			t.Errorf("extraction profile %s should not short-circuit", profile)
		}
	}
}
