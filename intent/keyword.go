package intent

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeywordRule assigns Label to any utterance containing one of Keywords.
type KeywordRule struct {
	Label    Label    `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// DefaultKeywordRules is the built-in offline keyword table.
func DefaultKeywordRules() []KeywordRule {
	return []KeywordRule{
		{Label: Logistics, Keywords: []string{"快递", "物流", "包裹", "单号", "express", "parcel"}},
		{Label: Refund, Keywords: []string{"退票", "改签", "退款", "refund", "reschedule"}},
		{Label: Campus, Keywords: []string{"选课", "成绩", "教务", "course", "grade", "registrar"}},
	}
}

// KeywordRouter classifies by substring match against the lower-cased
// utterance. Rules are tried in order and the first hit wins.
type KeywordRouter struct {
	rules []KeywordRule
}

// NewKeywordRouter creates a router over rules. Keywords are lower-cased
// once here. With no rules the default table is used.
func NewKeywordRouter(rules ...KeywordRule) *KeywordRouter {
	if len(rules) == 0 {
		rules = DefaultKeywordRules()
	}
	r := &KeywordRouter{rules: make([]KeywordRule, 0, len(rules))}
	for _, rule := range rules {
		kws := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			if kw = strings.ToLower(kw); kw != "" {
				kws = append(kws, kw)
			}
		}
		r.rules = append(r.rules, KeywordRule{Label: rule.Label, Keywords: kws})
	}
	return r
}

// Route implements Router.
func (r *KeywordRouter) Route(_ context.Context, utterance string) Label {
	low := strings.ToLower(utterance)
	for _, rule := range r.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(low, kw) {
				return rule.Label
			}
		}
	}
	return Fallback
}

// Rules returns the router's normalized rule table.
func (r *KeywordRouter) Rules() []KeywordRule {
	return r.rules
}

// keywordFile is the YAML layout of a keyword table:
//
//	rules:
//	  - label: logistics
//	    keywords: [快递, 物流]
type keywordFile struct {
	Rules []KeywordRule `yaml:"rules"`
}

// LoadKeywordRules reads a keyword table from a YAML file.
func LoadKeywordRules(path string) ([]KeywordRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords: %w", err)
	}
	return ParseKeywordRules(data)
}

// ParseKeywordRules decodes a keyword table.
func ParseKeywordRules(data []byte) ([]KeywordRule, error) {
	var f keywordFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse keywords: %w", err)
	}
	for i, rule := range f.Rules {
		if rule.Label == Fallback {
			return nil, fmt.Errorf("keyword rule %d: fallback cannot be assigned by keyword", i)
		}
		if len(rule.Keywords) == 0 {
			return nil, fmt.Errorf("keyword rule %d (%s): no keywords", i, rule.Label)
		}
	}
	return f.Rules, nil
}
