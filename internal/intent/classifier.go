// ABOUTME: Classifier maps message text to at most one intent
// ABOUTME: Linear scan over ordered rules with substring containment

package intent

import "strings"

// Classifier matches message text against an ordered rule table.
// The rule table is immutable after construction, so a single Classifier
// is safe for unbounded concurrent use.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a Classifier over the given rules. The slice is
// copied so later mutation by the caller cannot change classification.
func NewClassifier(rules []Rule) *Classifier {
	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &Classifier{rules: copied}
}

// Classify returns the intent of the first rule with any trigger contained
// in the lowercased text, or false if no rule matches. A text containing
// triggers from several rules always resolves to the earliest-declared
// rule; that ordering is part of the contract, not an accident.
func (c *Classifier) Classify(text string) (Intent, bool) {
	lowered := strings.ToLower(text)
	for _, rule := range c.rules {
		for _, trigger := range rule.Triggers {
			if strings.Contains(lowered, trigger) {
				return rule.Intent, true
			}
		}
	}
	return "", false
}
