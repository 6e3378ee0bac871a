package knowledge

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// MaxContextLength caps the assembled grounding context. ~15k chars is
	// roughly 3-4k tokens, well inside the completion request limit.
	MaxContextLength = 15000

	// MinContextLength below which the context is considered useless.
	MinContextLength = 200

	// TopPages is how many scored documents make it into the context.
	TopPages = 3

	// MinKeywordLength filters out short filler words ("de", "la", "the").
	MinKeywordLength = 3

	// FallbackContext is returned when scoring found nothing usable.
	FallbackContext = "Not enough relevant context found on the website. Use general knowledge but mention you are an expert on EiryBot."
)

var punctuationReplacer = strings.NewReplacer(
	".", "", ",", "", "/", "", "#", "", "!", "", "$", "", "%", "",
	"^", "", "&", "", "*", "", ";", "", ":", "", "{", "", "}", "",
	"=", "", "-", "", "_", "", "`", "", "~", "", "(", "", ")", "",
)

// Keywords tokenizes a query: lowercase, punctuation stripped, whitespace
// split, short tokens discarded.
func Keywords(text string) []string {
	cleaned := punctuationReplacer.Replace(strings.ToLower(text))

	var keywords []string
	for _, w := range strings.Fields(cleaned) {
		// Character count, not bytes: accented Spanish tokens ("más", "día")
		// are still short filler words.
		if utf8.RuneCountInString(w) > MinKeywordLength {
			keywords = append(keywords, w)
		}
	}
	return keywords
}

type scoredPage struct {
	Page
	score int
}

// Retriever selects grounding context by naive keyword overlap. This is a
// lexical substring scorer, not semantic search: for a site this size it is
// deterministic, instant and good enough.
type Retriever struct {
	kb *SiteKnowledge
}

func NewRetriever(kb *SiteKnowledge) *Retriever {
	return &Retriever{kb: kb}
}

// Retrieve returns the context string for one query. An empty query yields
// the full main-content dump with no scoring at all.
func (r *Retriever) Retrieve(query string) string {
	if query == "" {
		return r.kb.MainContentDump()
	}

	keywords := Keywords(query)

	scored := make([]scoredPage, 0, len(r.kb.Pages))
	for _, page := range r.kb.Pages {
		contentLower := strings.ToLower(page.Content)
		pathLower := strings.ToLower(page.Path)

		score := 0
		for _, kw := range keywords {
			if strings.Contains(contentLower, kw) {
				score++
			}
			// Path hits are a strong signal the page is about the topic.
			if strings.Contains(pathLower, kw) {
				score += 5
			}
		}
		if score > 0 {
			scored = append(scored, scoredPage{Page: page, score: score})
		}
	}

	// Stable: ties keep original document order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > TopPages {
		scored = scored[:TopPages]
	}

	var context strings.Builder
	context.WriteString(r.kb.MainContentDump())
	context.WriteString("\n## Relevant Site Content:\n")

	for _, page := range scored {
		pageContent := "\n--- Page: " + page.Path + " ---\n" + page.Content + "\n"
		// Whole documents only: skip once the budget would be exceeded.
		if context.Len()+len(pageContent) > MaxContextLength {
			break
		}
		context.WriteString(pageContent)
	}

	if context.Len() < MinContextLength {
		return FallbackContext
	}

	return context.String()
}
