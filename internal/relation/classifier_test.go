package relation

import (
	"testing"

	"credence/internal/registry"
	"credence/internal/source"
)

func doc(url, domain string) *source.FetchedDocument {
	return &source.FetchedDocument{URL: url, FinalURL: url, Domain: domain}
}

func TestClassify_OverrideWins(t *testing.T) {
	rel, _ := Classify(doc("https://example.gov/report", "example.gov"), registry.Entry{}, source.RelationThirdParty)
	if rel != source.RelationThirdParty {
		t.Errorf("rel = %s, want explicit override", rel)
	}
}

func TestClassify_AutoDoesNotWin(t *testing.T) {
	rel, _ := Classify(doc("https://example.gov/report", "example.gov"), registry.Entry{}, source.RelationAuto)
	if rel != source.RelationSelf {
		t.Errorf("rel = %s, want self for .gov under auto", rel)
	}
}

func TestClassify_OfficialDomain(t *testing.T) {
	for _, d := range []string{"agency.gov", "army.mil", "ministry.gov.cn"} {
		rel, _ := Classify(doc("https://"+d+"/statement", d), registry.Entry{}, "")
		if rel != source.RelationSelf {
			t.Errorf("domain %s: rel = %s, want self", d, rel)
		}
	}
}

func TestClassify_RegistryControl(t *testing.T) {
	rel, _ := Classify(doc("https://outlet.example/news", "outlet.example"),
		registry.Entry{StateMedia: true}, "")
	if rel != source.RelationSelf {
		t.Errorf("rel = %s, want self for state media", rel)
	}
}

func TestClassify_AboutPage(t *testing.T) {
	rel, _ := Classify(doc("https://ngo.example/about-us", "ngo.example"), registry.Entry{}, "")
	if rel != source.RelationSelf {
		t.Errorf("rel = %s, want self for about page", rel)
	}
}

func TestClassify_DefaultsToUnknownNeverThirdParty(t *testing.T) {
	rel, reason := Classify(doc("https://news.example/story", "news.example"), registry.Entry{}, "")
	if rel != source.RelationUnknown {
		t.Errorf("rel = %s, want unknown (never guess third_party)", rel)
	}
	if reason == "" {
		t.Error("reason must always be populated")
	}
}
