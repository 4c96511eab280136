package normalize

import (
	"testing"
	"time"

	"github.com/kararbul/kararbul/internal/source"
)

var testClock = func() time.Time {
	return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
}

func fixedScore() float64 { return 0.5 }

func newTestNormalizer() *Normalizer {
	return New(WithClock(testClock), WithScoreSource(fixedScore))
}

func floatPtr(v float64) *float64 { return &v }

func TestRecord_GenericNamesWin(t *testing.T) {
	n := newTestNormalizer()
	rec := source.Record{
		ID:      "r-1",
		Title:   "Generic title",
		Baslik:  "Yerel başlık",
		Summary: "Generic summary",
		Ozet:    "Yerel özet",
		Date:    "2025-05-01T00:00:00Z",
		Tarih:   "2020-01-01T00:00:00Z",
	}

	got := n.Record("yargitay", "Yargıtay", 0, rec)
	if got.Title() != "Generic title" {
		t.Errorf("Title = %q", got.Title())
	}
	if got.Summary() != "Generic summary" {
		t.Errorf("Summary = %q", got.Summary())
	}
	if got.Date().Year() != 2025 {
		t.Errorf("Date = %v, generic alias should win", got.Date())
	}
}

func TestRecord_LocalizedAliases(t *testing.T) {
	n := newTestNormalizer()
	rec := source.Record{
		Baslik: "Tazminat kararı",
		Ozet:   "Tazminat özeti",
		Daire:  "4. Hukuk Dairesi",
		Turu:   "Temyiz Kararı",
		Icerik: "Tam metin",
		Tarih:  "2024-11-20",
	}

	got := n.Record("yargitay", "Yargıtay", 3, rec)
	if got.Title() != "Tazminat kararı" {
		t.Errorf("Title = %q", got.Title())
	}
	if got.Summary() != "Tazminat özeti" {
		t.Errorf("Summary = %q", got.Summary())
	}
	if got.Department() != "4. Hukuk Dairesi" {
		t.Errorf("Department = %q", got.Department())
	}
	if got.DocumentType() != "Temyiz Kararı" {
		t.Errorf("DocumentType = %q", got.DocumentType())
	}
	if got.Content() != "Tam metin" {
		t.Errorf("Content = %q", got.Content())
	}
	if !got.Date().Equal(time.Date(2024, time.November, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v", got.Date())
	}
}

func TestRecord_Defaults(t *testing.T) {
	n := newTestNormalizer()

	got := n.Record("emsal", "Emsal (UYAP)", 7, source.Record{})
	if got.Title() != DefaultTitle {
		t.Errorf("Title = %q, want default", got.Title())
	}
	if got.Summary() != DefaultSummary {
		t.Errorf("Summary = %q, want default", got.Summary())
	}
	if got.DocumentType() != DefaultDocumentType {
		t.Errorf("DocumentType = %q, want default", got.DocumentType())
	}
	if !got.Date().Equal(testClock()) {
		t.Errorf("Date = %v, want clock default", got.Date())
	}
	if got.Score() != 0.5 {
		t.Errorf("Score = %v, want score-source default", got.Score())
	}
	if got.ID() == "" {
		t.Error("missing id must be generated")
	}
	if got.Institution() != "Emsal (UYAP)" {
		t.Errorf("Institution = %q", got.Institution())
	}
}

func TestRecord_ScorePrecedence(t *testing.T) {
	n := newTestNormalizer()

	withRelevance := n.Record("x", "X", 0, source.Record{RelevanceScore: floatPtr(0.9), Score: floatPtr(0.1)})
	if withRelevance.Score() != 0.9 {
		t.Errorf("relevanceScore alias should win, got %v", withRelevance.Score())
	}

	withScore := n.Record("x", "X", 0, source.Record{Score: floatPtr(0.3)})
	if withScore.Score() != 0.3 {
		t.Errorf("score alias should be used, got %v", withScore.Score())
	}
}

func TestRecord_Idempotent(t *testing.T) {
	n := newTestNormalizer()
	rec := source.Record{
		ID:             "fixed-1",
		Baslik:         "Karar",
		Ozet:           "Özet",
		Tarih:          "2025-02-03T10:00:00Z",
		Daire:          "2. Daire",
		Turu:           "Karar",
		RelevanceScore: floatPtr(0.7),
		DavaNo:         "2025/100",
		KararNo:        "2025/200",
		Keywords:       []string{"kira"},
	}

	a := n.Record("danistay", "Danıştay", 0, rec)
	b := n.Record("danistay", "Danıştay", 0, rec)

	if a.ID() != b.ID() || a.Title() != b.Title() || a.Summary() != b.Summary() ||
		!a.Date().Equal(b.Date()) || a.Score() != b.Score() ||
		a.Metadata().CaseNumber != b.Metadata().CaseNumber {
		t.Fatal("normalizing the same record twice must yield identical results")
	}
}

func TestRecords_Batch(t *testing.T) {
	n := newTestNormalizer()
	recs := []source.Record{
		{Baslik: "Bir"},
		{Baslik: "İki"},
		{Baslik: "Üç"},
	}

	got := n.Records("yargitay", "Yargıtay", recs)
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	seen := make(map[string]struct{}, len(got))
	for _, r := range got {
		if _, dup := seen[r.ID()]; dup {
			t.Fatalf("duplicate generated id %q", r.ID())
		}
		seen[r.ID()] = struct{}{}
	}
}
