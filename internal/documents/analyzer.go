package documents

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ErrUnreadableContent is returned for content that is not valid UTF-8.
var ErrUnreadableContent = errors.New("unreadable content")

// Analyzer turns raw document text into an AnalysisResult.
type Analyzer interface {
	Analyze(text string) (AnalysisResult, error)
}

// AnalyzerFunc adapts a function to the Analyzer interface.
type AnalyzerFunc func(text string) (AnalysisResult, error)

func (f AnalyzerFunc) Analyze(text string) (AnalysisResult, error) { return f(text) }

// Keyword maps a substring found in content to the entity it names.
type Keyword struct {
	Match  string
	Entity string
}

// DefaultKeywords is the keyword table of the built-in analyzer.
var DefaultKeywords = []Keyword{
	{Match: "Strata", Entity: "Strata Corp"},
	{Match: "Budget", Entity: "Financials"},
}

const (
	defaultSentiment    = 0.85
	defaultSummaryWords = 12
)

// KeywordAnalyzer is the built-in placeholder analyzer.
//
// Content is NFC-normalized before matching so composed and decomposed
// spellings of the same keyword are treated alike.
type KeywordAnalyzer struct {
	Keywords     []Keyword
	Sentiment    float64
	SummaryWords int
}

// NewKeywordAnalyzer returns an analyzer with the default keyword table.
func NewKeywordAnalyzer() *KeywordAnalyzer {
	return &KeywordAnalyzer{
		Keywords:     DefaultKeywords,
		Sentiment:    defaultSentiment,
		SummaryWords: defaultSummaryWords,
	}
}

// Analyze counts words, extracts keyword entities and builds a summary.
// Blank text is valid and yields zero words and an empty summary.
func (a *KeywordAnalyzer) Analyze(text string) (AnalysisResult, error) {
	if !utf8.ValidString(text) {
		return AnalysisResult{}, ErrUnreadableContent
	}
	text = norm.NFC.String(text)
	words := strings.Fields(text)

	entities := []string{}
	seen := make(map[string]bool)
	for _, kw := range a.Keywords {
		if kw.Match == "" || seen[kw.Entity] {
			continue
		}
		if strings.Contains(text, norm.NFC.String(kw.Match)) {
			seen[kw.Entity] = true
			entities = append(entities, kw.Entity)
		}
	}

	return AnalysisResult{
		WordCount:      len(words),
		KeyEntities:    entities,
		SentimentScore: a.Sentiment,
		Summary:        summarize(words, a.SummaryWords),
	}, nil
}

// summarize joins the first n words, marking truncation with "...".
func summarize(words []string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "..."
}
