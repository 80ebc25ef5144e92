package admission

import (
	"testing"

	"github.com/kilianp07/slotgate/core/model"
)

func TestServerSetResolve(t *testing.T) {
	set := NewServerSet([]model.Server{
		{Name: "main", BaseURL: "https://gen.example.com"},
		{Name: "images", BaseURL: "https://gen.example.com/images", CooldownSeconds: 120},
	}, 30)
	checks := []struct {
		endpoint string
		server   string
		cooldown int
	}{
		{"https://gen.example.com/v1/generate", "https://gen.example.com", 30},
		{"https://gen.example.com/images/generate", "https://gen.example.com/images", 120},
		{"https://other.example.com:8443/run", "https://other.example.com:8443", 30},
		{"not a url", "not a url", 30},
	}
	for _, c := range checks {
		srv, cd := set.Resolve(c.endpoint)
		if srv != c.server || cd != c.cooldown {
			t.Errorf("%s: got (%s, %d) want (%s, %d)", c.endpoint, srv, cd, c.server, c.cooldown)
		}
	}
	if _, cd := NewServerSet(nil, 0).Resolve("https://x"); cd != DefaultCooldownSeconds {
		t.Fatalf("expected default cooldown got %d", cd)
	}
}

func TestClassifier(t *testing.T) {
	c := NewClassifier(nil)
	if !c.IsGeneration("generate") || !c.IsGeneration(" Generate ") {
		t.Fatalf("default tag not matched")
	}
	if c.IsGeneration("list-models") {
		t.Fatalf("unexpected match")
	}
	c = NewClassifier([]string{"image", "VIDEO", ""})
	if !c.IsGeneration("video") || c.IsGeneration("generate") || c.IsGeneration("") {
		t.Fatalf("custom tags misclassified")
	}
}
