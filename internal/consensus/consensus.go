package consensus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/nguyentantai21042004/scribe-flow/internal/transcript"
)

const (
	MethodSingleSource    = "single_source"
	MethodWordLevelVoting = "word_level_voting"

	defaultLanguage = "auto"
)

var ErrNoTranscripts = errors.New("no transcripts to combine")

// ConsensusInputError reports that none of the given transcript files could be used.
type ConsensusInputError struct {
	Sources []string
	Err     error
}

func (e *ConsensusInputError) Error() string {
	return fmt.Sprintf("consensus over %d sources: %v", len(e.Sources), e.Err)
}

func (e *ConsensusInputError) Unwrap() error {
	return e.Err
}

// Info describes how a consensus transcript was produced.
type Info struct {
	SourceCount int      `json:"source_count"`
	SourceFiles []string `json:"source_files"`
	Method      string   `json:"method"`
}

// Result is the persisted consensus document. Field order is the on-disk key order.
type Result struct {
	Text     string               `json:"text"`
	Language string               `json:"language"`
	Segments []transcript.Segment `json:"segments"`
	Info     Info                 `json:"consensus_info"`
}

// Record returns the transcript view of the result.
func (r Result) Record() transcript.Record {
	return transcript.Record{Text: r.Text, Language: r.Language, Segments: r.Segments}
}

// Build combines records into one consensus result. sources names the files the
// records came from and is copied into the result as is.
func Build(records []transcript.Record, sources []string) (Result, error) {
	if len(records) == 0 {
		return Result{}, ErrNoTranscripts
	}

	var (
		text   string
		best   transcript.Record
		method string
	)
	if len(records) == 1 {
		text = strings.TrimSpace(records[0].Text)
		best = records[0]
		method = MethodSingleSource
	} else {
		texts := make([]string, len(records))
		for i, rec := range records {
			texts[i] = strings.TrimSpace(rec.Text)
		}
		text = VoteWords(texts)
		best = records[Representative(texts)]
		method = MethodWordLevelVoting
	}

	language := best.Language
	if language == "" {
		language = defaultLanguage
	}

	files := make([]string, len(sources))
	copy(files, sources)

	return Result{
		Text:     text,
		Language: language,
		Segments: []transcript.Segment{{Start: 0, End: 0, Text: text}},
		Info: Info{
			SourceCount: len(records),
			SourceFiles: files,
			Method:      method,
		},
	}, nil
}

// VoteWords picks, for every word position, the most common lower-cased token
// among the texts long enough to have one. Ties go to the token seen first.
func VoteWords(texts []string) string {
	words := make([][]string, len(texts))
	longest := 0
	for i, t := range texts {
		words[i] = strings.Fields(t)
		if len(words[i]) > longest {
			longest = len(words[i])
		}
	}

	out := make([]string, 0, longest)
	for pos := 0; pos < longest; pos++ {
		counts := make(map[string]int)
		var order []string
		for _, w := range words {
			if pos >= len(w) {
				continue
			}
			token := strings.ToLower(w[pos])
			if _, seen := counts[token]; !seen {
				order = append(order, token)
			}
			counts[token]++
		}

		winner := order[0]
		for _, token := range order[1:] {
			if counts[token] > counts[winner] {
				winner = token
			}
		}
		out = append(out, winner)
	}
	return strings.Join(out, " ")
}

// Representative returns the index of the text with the highest mean similarity
// to all the others. The first maximum wins.
func Representative(texts []string) int {
	if len(texts) < 2 {
		return 0
	}

	best, bestScore := 0, -1.0
	for i := range texts {
		var sum float64
		for j := range texts {
			if i != j {
				sum += Similarity(texts[i], texts[j])
			}
		}
		score := sum / float64(len(texts)-1)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// Similarity is the case-insensitive character matching ratio of a and b, in [0, 1].
func Similarity(a, b string) float64 {
	m := difflib.NewMatcher(chars(strings.ToLower(a)), chars(strings.ToLower(b)))
	return m.Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
