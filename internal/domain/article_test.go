package domain

import (
	"testing"
	"time"
)

func TestParseArticleType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    ArticleType
		matched bool
	}{
		{"Article", TypeResearchArticle, true},
		{"Research Article", TypeResearchArticle, true},
		{"Brief Communication", TypeBriefCommunication, true},
		{"News & Views", TypeNews, true},
		{"  review article ", TypeReview, true},
		{"Perspective", TypePerspective, true},
		{"", TypeResearchArticle, false},
		{"Correspondence", TypeResearchArticle, false},
	}

	for _, c := range cases {
		got, ok := ParseArticleType(c.in)
		if got != c.want || ok != c.matched {
			t.Fatalf("ParseArticleType(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.matched)
		}
	}
}

func TestArticleTypeStringIsExhaustive(t *testing.T) {
	t.Parallel()

	for typ := TypeResearchArticle; typ <= TypeOther; typ++ {
		if typ.String() == "" {
			t.Fatalf("missing label for %d", typ)
		}
	}
	if ArticleType(99).String() != "Other" {
		t.Fatalf("unknown types must render as Other")
	}
}

func TestClassifyField(t *testing.T) {
	t.Parallel()

	if got := ClassifyField("Ultrafast laser pulses in optical fibres", "photon statistics"); got != FieldPhotonics {
		t.Fatalf("expected photonics, got %s", got)
	}
	if got := ClassifyField("", ""); got != FieldOther {
		t.Fatalf("expected other, got %s", got)
	}
}

func TestSameDayIgnoresZone(t *testing.T) {
	t.Parallel()

	shanghai := time.FixedZone("CST", 8*3600)
	published := time.Date(2025, time.June, 27, 0, 0, 0, 0, time.UTC)
	target := time.Date(2025, time.June, 27, 7, 0, 0, 0, shanghai)
	if !SameDay(published, target) {
		t.Fatalf("expected same calendar day")
	}
	if SameDay(published.AddDate(0, 0, 1), target) {
		t.Fatalf("next day must not match")
	}
}
