package knowledge

import (
	"strings"
	"testing"
)

func richMessages() map[string]interface{} {
	return map[string]interface{}{
		"home": map[string]interface{}{
			"title":    "EiryBot, el asistente de IA para tu negocio",
			"subtitle": "Automatiza la atencion al cliente con conversaciones naturales",
		},
		"pricing": map[string]interface{}{
			"title": "Planes y precios",
		},
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "strips punctuation and lowercases",
			query: "Hello, World. Go-Lang!",
			want:  []string{"hello", "world", "golang"},
		},
		{
			name:  "drops short tokens",
			query: "el bot de la casa grande",
			want:  []string{"casa", "grande"},
		},
		{
			name:  "counts characters not bytes for accented tokens",
			query: "más día año cuánto cuesta",
			want:  []string{"cuánto", "cuesta"},
		},
		{
			name:  "empty query",
			query: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Keywords(tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("Keywords(%q) = %v, want %v", tt.query, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Keywords(%q)[%d] = %q, want %q", tt.query, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRetrieveEmptyQueryReturnsMainDump(t *testing.T) {
	kb := New([]Page{{Path: "src/app/page.tsx", Content: "home page"}}, richMessages())
	r := NewRetriever(kb)

	got := r.Retrieve("")
	if got != kb.MainContentDump() {
		t.Error("empty query must return the main content dump verbatim")
	}
	if !strings.Contains(got, "## Main Messages (i18n):") {
		t.Error("main dump missing its header")
	}
}

func TestRetrievePathHitOutranksContentHit(t *testing.T) {
	kb := New([]Page{
		{Path: "src/app/about/page.tsx", Content: "we also mention pricing once here in passing text"},
		{Path: "src/app/pricing/page.tsx", Content: "planes mensuales y anuales para cada tamano de equipo"},
	}, richMessages())
	r := NewRetriever(kb)

	got := r.Retrieve("pricing")

	pricingIdx := strings.Index(got, "--- Page: src/app/pricing/page.tsx ---")
	aboutIdx := strings.Index(got, "--- Page: src/app/about/page.tsx ---")
	if pricingIdx == -1 || aboutIdx == -1 {
		t.Fatalf("expected both pages in context, got:\n%s", got)
	}
	if pricingIdx > aboutIdx {
		t.Error("page with the keyword in its path must rank above a content-only hit")
	}
}

func TestRetrieveCapsAtTopPages(t *testing.T) {
	pages := []Page{
		{Path: "src/app/a/page.tsx", Content: "asistente uno"},
		{Path: "src/app/b/page.tsx", Content: "asistente dos"},
		{Path: "src/app/c/page.tsx", Content: "asistente tres"},
		{Path: "src/app/d/page.tsx", Content: "asistente cuatro"},
	}
	r := NewRetriever(New(pages, richMessages()))

	got := r.Retrieve("asistente")

	if n := strings.Count(got, "--- Page:"); n != TopPages {
		t.Errorf("context contains %d pages, want %d", n, TopPages)
	}
	if strings.Contains(got, "src/app/d/page.tsx") {
		t.Error("tie-break must keep original order, dropping the last page")
	}
}

func TestRetrieveSkipsPagesOverBudget(t *testing.T) {
	huge := strings.Repeat("asistente virtual para empresas ", 600) // ~19k chars
	pages := []Page{
		{Path: "src/app/big/page.tsx", Content: huge},
		{Path: "src/app/small/page.tsx", Content: "el asistente responde preguntas sobre productos y servicios de la empresa, incluyendo horarios, precios y disponibilidad en todo momento"},
	}
	r := NewRetriever(New(pages, richMessages()))

	got := r.Retrieve("asistente")

	if len(got) > MaxContextLength {
		t.Errorf("context length %d exceeds budget %d", len(got), MaxContextLength)
	}
	if strings.Contains(got, "src/app/big/page.tsx") {
		t.Error("oversized page must be skipped whole, not truncated")
	}
	// Assembly stops at the first overflow, so later pages are dropped too.
	if strings.Contains(got, "src/app/small/page.tsx") {
		t.Error("assembly must stop at the first page that exceeds the budget")
	}
}

func TestRetrieveFallsBackWhenContextTooShort(t *testing.T) {
	kb := New([]Page{{Path: "src/app/page.tsx", Content: "short"}}, map[string]interface{}{})
	r := NewRetriever(kb)

	got := r.Retrieve("unrelated query words")
	if got != FallbackContext {
		t.Errorf("expected fallback context, got:\n%s", got)
	}
}

func TestRetrieveIsDeterministic(t *testing.T) {
	kb := New([]Page{
		{Path: "src/app/features/page.tsx", Content: "funciones del asistente virtual y la automatizacion del soporte"},
		{Path: "src/app/pricing/page.tsx", Content: "precios del asistente para cada plan disponible por meses"},
	}, richMessages())
	r := NewRetriever(kb)

	first := r.Retrieve("asistente precios")
	for i := 0; i < 5; i++ {
		if got := r.Retrieve("asistente precios"); got != first {
			t.Fatal("identical query produced a different context")
		}
	}
}
