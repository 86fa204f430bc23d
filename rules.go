package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ruleFile is the yaml shape of an optional custom-rules file. Custom rules
// are evaluated before the built-ins so a team can claim keywords for a
// category ahead of the default priority.
type ruleFile struct {
	Rules []CategoryRule `yaml:"rules"`
}

// LoadCategoryRules returns the active rule list: custom rules from path
// (if set) followed by the built-ins. Custom rules must name a category
// from the fixed set and carry at least one keyword.
func LoadCategoryRules(path string) ([]CategoryRule, error) {
	if strings.TrimSpace(path) == "" {
		return builtinRules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rules yaml: %w", err)
	}

	var custom []CategoryRule
	for i, rule := range rf.Rules {
		if !validCategory(rule.Category) {
			return nil, fmt.Errorf("rules file entry %d: unknown category %q", i, rule.Category)
		}
		var keywords []string
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("rules file entry %d: no keywords", i)
		}
		custom = append(custom, CategoryRule{Category: rule.Category, Keywords: keywords})
	}

	return append(custom, builtinRules...), nil
}
