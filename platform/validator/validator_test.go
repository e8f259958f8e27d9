package validator

import "testing"

func TestShareIDTag(t *testing.T) {
	type param struct {
		ID string `validate:"required,shareid"`
	}
	val := New()

	if err := val.Struct(param{ID: "Ab3_-x"}); err != nil {
		t.Fatalf("expected valid id, got %v", err)
	}
	if err := val.Struct(param{ID: "../secret"}); err == nil {
		t.Fatal("expected traversal id to fail validation")
	}
}

func TestStructRequiredURL(t *testing.T) {
	type request struct {
		URL string `validate:"required,max=2048"`
	}
	val := New()

	if err := val.Struct(request{}); err == nil {
		t.Fatal("expected missing url to fail")
	}
	if err := val.Struct(request{URL: "https://voicerly.app/share/abc"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
