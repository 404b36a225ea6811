// Package domain decides whether free text belongs to the beekeeping domain.
//
// The gate is a case-insensitive substring check against a fixed multilingual
// keyword table. Substring (rather than whole-word) matching is deliberate:
// Uzbek morphology glues suffixes onto stems ("asalarilarim"), so a stem hit
// inside a longer word must count. The table trades precision for recall and
// carries common misspellings and transliterations on purpose.
package domain

import "strings"

// Topic identifies a beekeeping sub-topic for an in-domain text.
type Topic string

const (
	TopicGeneral   Topic = "general"
	TopicHealth    Topic = "health"
	TopicFeeding   Topic = "feeding"
	TopicQueen     Topic = "queen"
	TopicHive      Topic = "hive"
	TopicProducts  Topic = "products"
	TopicWintering Topic = "wintering"
)

type topicKeywords struct {
	topic    Topic
	keywords []string
}

// Classifier is a pure, in-memory domain gate. It never fails and holds no
// mutable state, so a single instance is safe for concurrent use.
type Classifier struct {
	topics []topicKeywords
	all    []string
}

// NewClassifier builds a classifier over the default keyword table.
func NewClassifier() *Classifier {
	return newClassifier(defaultTopics())
}

func newClassifier(topics []topicKeywords) *Classifier {
	c := &Classifier{topics: topics}
	seen := make(map[string]struct{})
	for _, tk := range topics {
		for _, kw := range tk.keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			c.all = append(c.all, kw)
		}
	}
	return c
}

// IsInDomain reports whether the text contains any domain keyword. Empty or
// whitespace-only input is out of domain.
func (c *Classifier) IsInDomain(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return false
	}
	for _, kw := range c.all {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

// ClassifyTopic returns the sub-topic of an in-domain text. Topics are checked
// in fixed table order and the first hit wins; an in-domain text with no
// topic-specific hit classifies as TopicGeneral. The second return is false
// when the text is out of domain entirely.
func (c *Classifier) ClassifyTopic(text string) (Topic, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return "", false
	}
	for _, tk := range c.topics {
		if tk.topic == TopicGeneral {
			continue
		}
		for _, kw := range tk.keywords {
			if strings.Contains(normalized, kw) {
				return tk.topic, true
			}
		}
	}
	if c.IsInDomain(normalized) {
		return TopicGeneral, true
	}
	return "", false
}
