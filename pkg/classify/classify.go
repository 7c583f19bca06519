// Package classify maps raw sender metadata to a canonical sender tag.
// Tag detection is an ordered list of predicates, the first match wins, so the
// registration order of rules is part of the routing contract.
package classify

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/umputun/mailscope/pkg/config"
	"github.com/umputun/mailscope/pkg/domain"
)

// contentPrefixLen is how much of the body predicates are allowed to look at
const contentPrefixLen = 1000

// Signals are the lowercased inputs every predicate is evaluated against
type Signals struct {
	Email   string
	Name    string
	Title   string
	Content string // prefix of the body, contentPrefixLen runes at most
}

// Rule is a single tag predicate
type Rule struct {
	Tag   string
	Match func(s Signals) bool
}

// TextExtractor turns an HTML body into plain text
type TextExtractor interface {
	Text(htmlContent string) string
}

// Options for the classifier
type Options struct {
	DetectionRules []config.DetectionRule // evaluated before built-in rules
	Senders        []config.SenderGroup   // allow-list, empty allows everything
	Blocked        config.BlockedConfig
	DefaultTag     string
	Extractor      TextExtractor // body text of html-only items, nil passes raw html
}

// Classifier resolves sender tags and applies allow and block lists
type Classifier struct {
	rules      []Rule
	senders    []config.SenderGroup
	blocked    config.BlockedConfig
	defaultTag string
	extractor  TextExtractor
}

// New makes a classifier with configured detection rules followed by the built-in ones
func New(opts Options) *Classifier {
	res := &Classifier{senders: opts.Senders, blocked: opts.Blocked, defaultTag: opts.DefaultTag,
		extractor: opts.Extractor}
	for _, r := range opts.DetectionRules {
		res.rules = append(res.rules, configuredRule(r))
	}
	res.rules = append(res.rules, BuiltinRules()...)
	return res
}

// Classify returns the tag of the first matching rule or empty string if nothing matched
func (c *Classifier) Classify(senderEmail, senderName, title, contentPrefix string) string {
	s := newSignals(senderEmail, senderName, title, contentPrefix)
	for _, r := range c.rules {
		if r.Match(s) {
			return r.Tag
		}
	}
	return ""
}

// Tags returns tags of all rules in evaluation order
func (c *Classifier) Tags() []string {
	res := make([]string, 0, len(c.rules))
	for _, r := range c.rules {
		res = append(res, r.Tag)
	}
	return res
}

// Allowed checks the raw From header against the allow-list.
// Returns the initial tag of the first active group containing a matching pattern.
func (c *Classifier) Allowed(senderRaw string) (initialTag string, ok bool) {
	active := 0
	from := strings.ToLower(senderRaw)
	for _, g := range c.senders {
		if !g.IsActive() {
			continue
		}
		active++
		for _, p := range g.Patterns {
			if p != "" && strings.Contains(from, strings.ToLower(p)) {
				return g.Tag, true
			}
		}
	}
	return "", active == 0
}

// Blocked checks sender and subject against the block list
func (c *Classifier) Blocked(senderEmail, senderName, title string) bool {
	email, name := strings.ToLower(senderEmail), strings.ToLower(strings.TrimSpace(senderName))
	for _, n := range c.blocked.Names {
		if name != "" && name == strings.ToLower(strings.TrimSpace(n)) {
			return true
		}
	}
	for _, e := range c.blocked.Emails {
		if e != "" && strings.Contains(email, strings.ToLower(e)) {
			return true
		}
	}
	text := name + " " + strings.ToLower(title)
	for _, p := range c.blocked.Patterns {
		if p != "" && strings.Contains(text, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// Resolve makes the full tagging decision for an inbound item: block list, allow list,
// ordered rules, then the allow-list tag and the default tag as fallbacks.
// ok is false if the item should not be ingested at all.
func (c *Classifier) Resolve(item domain.InboundItem) (tag string, ok bool) {
	name, email := ParseSender(item.SenderRaw)
	if c.Blocked(email, name, item.Title) {
		return "", false
	}
	initial, allowed := c.Allowed(item.SenderRaw)
	if !allowed {
		return "", false
	}

	if tag = c.Classify(email, name, item.Title, c.contentOf(item)); tag != "" {
		return tag, true
	}
	if initial != "" {
		return initial, true
	}
	return c.defaultTag, true
}

// contentOf returns the body predicates look at. Html-only items are converted to text,
// otherwise the prefix would be mostly head and style markup.
func (c *Classifier) contentOf(item domain.InboundItem) string {
	if item.ContentText != "" || item.ContentHTML == "" {
		return item.ContentText
	}
	if c.extractor == nil {
		return item.ContentHTML
	}
	return c.extractor.Text(item.ContentHTML)
}

var angleAddrRe = regexp.MustCompile(`<([^<>@\s]+@[^<>\s]+)>`)

// ParseSender splits a free-text From header into display name and address.
// Malformed headers are handled best effort and never produce an error.
func ParseSender(raw string) (name, email string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}
	if addr, err := mail.ParseAddress(raw); err == nil {
		return addr.Name, addr.Address
	}
	if m := angleAddrRe.FindStringSubmatchIndex(raw); m != nil {
		name = strings.Trim(strings.TrimSpace(raw[:m[0]]), `"'`)
		return name, raw[m[2]:m[3]]
	}
	if strings.Contains(raw, "@") && !strings.ContainsAny(raw, " \t") {
		return "", raw
	}
	return strings.Trim(raw, `"'`), ""
}

func newSignals(email, name, title, content string) Signals {
	if r := []rune(content); len(r) > contentPrefixLen {
		content = string(r[:contentPrefixLen])
	}
	return Signals{
		Email:   strings.ToLower(email),
		Name:    strings.ToLower(name),
		Title:   strings.ToLower(title),
		Content: strings.ToLower(content),
	}
}

// configuredRule converts a detection rule from config into a predicate.
// Sender is required to match if set, subject and body conditions combine with rule's logic.
func configuredRule(r config.DetectionRule) Rule {
	sender := strings.ToLower(r.Sender)
	subjects := lowerAll(r.SubjectContains)
	bodies := lowerAll(r.BodyContains)
	return Rule{Tag: r.Tag, Match: func(s Signals) bool {
		if sender != "" && !strings.Contains(s.Email, sender) && !strings.Contains(s.Name, sender) {
			return false
		}
		if len(subjects) == 0 && len(bodies) == 0 {
			return sender != ""
		}
		subjectHit := len(subjects) > 0 && containsAny(s.Title, subjects...)
		bodyHit := len(bodies) > 0 && containsAny(s.Content, bodies...)
		if strings.EqualFold(r.Logic, "OR") {
			return subjectHit || bodyHit
		}
		return (len(subjects) == 0 || subjectHit) && (len(bodies) == 0 || bodyHit)
	}}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func lowerAll(ss []string) []string {
	res := make([]string, 0, len(ss))
	for _, s := range ss {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			res = append(res, s)
		}
	}
	return res
}
