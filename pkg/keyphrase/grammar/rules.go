package grammar

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cognicore/keyphrase/pkg/keyphrase/tagset"
)

// minRuleLen is the shortest line that can hold a rule.
const minRuleLen = 3

// Rule is one keyphrase pattern in natural phrase order.
type Rule struct {
	Line int
	Tags []string
}

// Reversed returns the tags last-first, the order the trie indexes them in.
func (r Rule) Reversed() []string {
	out := make([]string, len(r.Tags))
	for i, tag := range r.Tags {
		out[len(r.Tags)-1-i] = tag
	}
	return out
}

func (r Rule) String() string {
	return strings.Join(r.Tags, " ")
}

// RuleError reports the first invalid tag of a rule file.
type RuleError struct {
	Line  int
	Token string
	Err   error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rules line %d: invalid tag %q: %v", e.Line, e.Token, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// ParseRules reads one rule per line, tags separated by whitespace.
// Format:
//
//	# adjective + noun
//	ADJF_sing_nomn NOUN_sing_nomn
//	NOUN_sing_nomn NOUN_sing_gent
//
// Comment lines and lines shorter than three characters are skipped. The
// first tag outside the known vocabularies aborts parsing with a *RuleError.
func ParseRules(r io.Reader) ([]Rule, error) {
	scanner := bufio.NewScanner(r)
	var rules []Rule
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if len(line) < minRuleLen || strings.HasPrefix(line, "#") {
			continue
		}

		tags := strings.Fields(line)
		for _, tag := range tags {
			if err := tagset.ValidateRuleKey(tag); err != nil {
				return nil, &RuleError{Line: lineNum, Token: tag, Err: err}
			}
		}
		rules = append(rules, Rule{Line: lineNum, Tags: tags})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return rules, nil
}

// LoadRules parses a rule file.
func LoadRules(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rules, err := ParseRules(f)
	if err != nil {
		return nil, fmt.Errorf("load rules %s: %w", path, err)
	}
	return rules, nil
}
