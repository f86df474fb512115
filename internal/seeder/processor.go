package seeder

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/Ayash-Bera/aidline/internal/classifier"
	"github.com/Ayash-Bera/aidline/internal/models"
)

const (
	DefaultChunkSize    = 1200
	DefaultChunkOverlap = 150
	minChunkLength      = 40
)

// ContentProcessor cleans crawled guide text and cuts it into indexable chunks.
type ContentProcessor struct {
	classifier *classifier.Classifier

	horizontalSpace *regexp.Regexp
	htmlTags        *regexp.Regexp
	footnoteMarks   *regexp.Regexp
	sentenceBreak   *regexp.Regexp
}

func NewContentProcessor(c *classifier.Classifier) *ContentProcessor {
	return &ContentProcessor{
		classifier:      c,
		horizontalSpace: regexp.MustCompile(`[ \t\f\v\x{00a0}]+`),
		htmlTags:        regexp.MustCompile(`<[^>]*>`),
		footnoteMarks:   regexp.MustCompile(`\[\d+\]`),
		sentenceBreak:   regexp.MustCompile(`[.!?]+\s+`),
	}
}

// CleanContent strips markup and normalizes whitespace. Line structure is kept so
// numbered steps stay on their own lines; runs of blank lines collapse to one.
func (cp *ContentProcessor) CleanContent(content string) string {
	content = cp.htmlTags.ReplaceAllString(content, "")
	content = cp.footnoteMarks.ReplaceAllString(content, "")
	content = strings.ReplaceAll(content, "\r\n", "\n")

	lines := strings.Split(content, "\n")
	var cleaned []string
	blank := false

	for _, line := range lines {
		line = strings.TrimSpace(cp.horizontalSpace.ReplaceAllString(line, " "))
		if line == "" {
			if !blank && len(cleaned) > 0 {
				cleaned = append(cleaned, "")
			}
			blank = true
			continue
		}
		blank = false
		cleaned = append(cleaned, line)
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// SplitIntoChunks packs paragraphs into chunks of at most maxChunkSize characters.
// Each chunk after the first starts with the last overlap characters of the previous
// one, cut at a word boundary.
func (cp *ContentProcessor) SplitIntoChunks(content string, maxChunkSize, overlap int) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= maxChunkSize/2 {
		overlap = 0
	}
	if len(content) <= maxChunkSize {
		return []string{content}
	}

	var pieces []string
	for _, paragraph := range strings.Split(content, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		if len(paragraph) > maxChunkSize-overlap {
			pieces = append(pieces, cp.splitBySentences(paragraph, maxChunkSize-overlap)...)
			continue
		}
		pieces = append(pieces, paragraph)
	}

	var chunks []string
	var current strings.Builder
	for _, piece := range pieces {
		if current.Len() > 0 && current.Len()+len(piece)+2 > maxChunkSize {
			chunk := strings.TrimSpace(current.String())
			chunks = append(chunks, chunk)
			current.Reset()
			if tail := overlapTail(chunk, overlap); tail != "" && len(tail)+len(piece)+2 <= maxChunkSize {
				current.WriteString(tail)
			}
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(piece)
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	return chunks
}

func overlapTail(chunk string, overlap int) string {
	if overlap <= 0 || len(chunk) <= overlap {
		return ""
	}
	tail := chunk[len(chunk)-overlap:]
	if i := strings.IndexAny(tail, " \n"); i >= 0 {
		tail = tail[i+1:]
	}
	return strings.TrimSpace(tail)
}

// splitBySentences splits text by sentences when paragraphs are too long. A single
// sentence longer than maxSize is cut at word boundaries.
func (cp *ContentProcessor) splitBySentences(text string, maxSize int) []string {
	var sentences []string
	last := 0
	for _, loc := range cp.sentenceBreak.FindAllStringIndex(text, -1) {
		sentences = append(sentences, strings.TrimSpace(text[last:loc[1]]))
		last = loc[1]
	}
	if last < len(text) {
		sentences = append(sentences, strings.TrimSpace(text[last:]))
	}

	var chunks []string
	var current strings.Builder
	for _, sentence := range sentences {
		if sentence == "" {
			continue
		}
		for len(sentence) > maxSize {
			cut := strings.LastIndex(sentence[:maxSize], " ")
			if cut <= 0 {
				cut = maxSize
			}
			if current.Len() > 0 {
				chunks = append(chunks, strings.TrimSpace(current.String()))
				current.Reset()
			}
			chunks = append(chunks, strings.TrimSpace(sentence[:cut]))
			sentence = strings.TrimSpace(sentence[cut:])
		}
		if current.Len() > 0 && current.Len()+len(sentence)+1 > maxSize {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	return chunks
}

// WithCitation appends the citation line the fusion stage extracts sources from.
func WithCitation(chunk, title, url string) string {
	if title == "" || url == "" {
		return chunk
	}
	return fmt.Sprintf("%s\nSource: %s (%s)", chunk, title, url)
}

// DetectConditions returns the distinct conditions the page's chunks classify as,
// in first-seen order, without unclassified.
func (cp *ContentProcessor) DetectConditions(chunks []string) []models.ConditionTag {
	seen := make(map[models.ConditionTag]bool)
	var out []models.ConditionTag
	for _, chunk := range chunks {
		c := cp.classifier.Classify(chunk)
		if c == models.ConditionUnclassified || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// BuildChunks turns a cleaned page into document index rows.
func (cp *ContentProcessor) BuildChunks(page GuidePage, content, collection string) []models.DocumentChunk {
	var rows []models.DocumentChunk
	for _, text := range cp.SplitIntoChunks(content, DefaultChunkSize, DefaultChunkOverlap) {
		if len(text) < minChunkLength {
			continue
		}
		condition := cp.classifier.Classify(page.Title + " " + text)
		if condition == models.ConditionUnclassified && page.Condition != "" {
			condition = page.Condition
		}
		rows = append(rows, models.DocumentChunk{
			Collection: collection,
			Content:    WithCitation(text, page.Title, page.URL),
			Title:      page.Title,
			URL:        page.URL,
			SourceType: string(models.SourceDocument),
			Condition:  string(condition),
			ChunkIndex: len(rows),
		})
	}
	return rows
}

// CountWords estimates word count in text
func (cp *ContentProcessor) CountWords(text string) int {
	if text == "" {
		return 0
	}

	words := strings.FieldsFunc(text, func(c rune) bool {
		return unicode.IsSpace(c) || unicode.IsPunct(c)
	})

	count := 0
	for _, word := range words {
		if len(strings.TrimSpace(word)) > 1 {
			count++
		}
	}

	return count
}
