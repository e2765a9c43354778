package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"

	"github.com/armanmujtaba/Trivanza/conversation"
	"github.com/armanmujtaba/Trivanza/prompts"
	"github.com/armanmujtaba/Trivanza/tripform"
)

// Policy is the swappable product data: what counts as travel, the canned
// replies, budget splits, prompt families and region notes
type Policy struct {
	Keywords        conversation.Keywords     `yaml:"keywords"`
	Replies         conversation.Replies      `yaml:"replies"`
	Tiers           prompts.TierTable         `yaml:"tiers"`
	Families        map[string]prompts.Family `yaml:"families"`
	Regions         []prompts.RegionNote      `yaml:"regions"`
	DefaultBudget   float64                   `yaml:"default_budget"`
	DefaultCurrency string                    `yaml:"default_currency"`
}

// DefaultPolicy returns the built-in policy
func DefaultPolicy() Policy {
	tiers := prompts.TierTable{}
	for k, v := range prompts.DefaultTiers {
		tiers[k] = v
	}
	return Policy{
		Keywords:        conversation.DefaultKeywords,
		Replies:         conversation.DefaultReplies,
		Tiers:           tiers,
		Families:        prompts.DefaultFamilies(),
		Regions:         append([]prompts.RegionNote(nil), prompts.DefaultRegions...),
		DefaultBudget:   tripform.DefaultBudgetAmount,
		DefaultCurrency: "INR",
	}
}

// LoadPolicy reads a YAML policy file over the defaults. Every top-level
// field present in the file replaces the built-in value; an empty path
// returns the defaults.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read policy: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes YAML over the defaults and validates the result
func ParsePolicy(data []byte) (Policy, error) {
	var overlay map[string]yaml.Node
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Policy{}, fmt.Errorf("failed to parse policy: %w", err)
	}

	policy := DefaultPolicy()
	fields := map[string]any{
		"keywords":         &policy.Keywords,
		"replies":          &policy.Replies,
		"tiers":            &policy.Tiers,
		"families":         &policy.Families,
		"regions":          &policy.Regions,
		"default_budget":   &policy.DefaultBudget,
		"default_currency": &policy.DefaultCurrency,
	}
	for key, node := range overlay {
		target, ok := fields[key]
		if !ok {
			return Policy{}, fmt.Errorf("unknown policy field %q", key)
		}
		switch key {
		case "tiers":
			policy.Tiers = prompts.TierTable{}
		case "families":
			policy.Families = map[string]prompts.Family{}
		}
		if err := node.Decode(target); err != nil {
			return Policy{}, fmt.Errorf("failed to parse policy field %q: %w", key, err)
		}
	}

	if err := policy.Validate(); err != nil {
		return Policy{}, err
	}
	return policy, nil
}

// Validate rejects a policy the rest of the service cannot run with
func (p Policy) Validate() error {
	var errs []error
	if err := p.Tiers.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(p.Families) == 0 {
		errs = append(errs, errors.New("policy defines no template families"))
	}
	for name, f := range p.Families {
		if f.Name != name {
			errs = append(errs, fmt.Errorf("family %q is registered as %q", f.Name, name))
		}
		if err := f.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(p.Keywords.Greetings) == 0 || len(p.Keywords.Travel) == 0 {
		errs = append(errs, errors.New("policy needs greeting and travel keywords"))
	}
	if p.Replies.Greeting == "" || p.Replies.Refusal == "" {
		errs = append(errs, errors.New("policy needs greeting and refusal replies"))
	}
	if strings.Count(p.Replies.Apology, "%s") != 1 || strings.Count(p.Replies.Apology, "%") != 1 {
		errs = append(errs, errors.New("apology reply must contain exactly one %s for the failure reason"))
	}
	if p.DefaultBudget <= 0 {
		errs = append(errs, errors.New("default budget must be greater than zero"))
	}
	if _, err := currency.ParseISO(p.DefaultCurrency); err != nil {
		errs = append(errs, fmt.Errorf("default currency %q is not an ISO 4217 code", p.DefaultCurrency))
	}
	return errors.Join(errs...)
}

// Classifier compiles the keyword policy. Region note keywords count as
// place names.
func (p Policy) Classifier() *conversation.Classifier {
	var places []string
	for _, r := range p.Regions {
		places = append(places, r.Keywords...)
	}
	return conversation.NewClassifier(p.Keywords, places...)
}

// Family returns the named template family
func (p Policy) Family(name string) (prompts.Family, error) {
	f, ok := p.Families[name]
	if !ok {
		return prompts.Family{}, fmt.Errorf("unknown template family %q", name)
	}
	return f, nil
}
