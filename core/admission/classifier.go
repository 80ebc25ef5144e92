package admission

import "strings"

// DefaultGenerationTags is used when no tags are configured.
var DefaultGenerationTags = []string{"generate"}

// Classifier decides which operations go through the gate.
type Classifier struct {
	tags map[string]struct{}
}

// NewClassifier builds a Classifier from operation tags. Matching is
// case-insensitive; an empty list uses DefaultGenerationTags.
func NewClassifier(tags []string) Classifier {
	if len(tags) == 0 {
		tags = DefaultGenerationTags
	}
	c := Classifier{tags: make(map[string]struct{}, len(tags))}
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			c.tags[t] = struct{}{}
		}
	}
	return c
}

// IsGeneration reports whether op is generation-class work.
func (c Classifier) IsGeneration(op string) bool {
	_, ok := c.tags[strings.ToLower(strings.TrimSpace(op))]
	return ok
}
