package tagset

import (
	"errors"
	"testing"

	"github.com/cognicore/keyphrase/pkg/keyphrase/internalerr"
)

func TestContextKey(t *testing.T) {
	if got := ContextKey(PreStart, Start); got != "<*>_<S>" {
		t.Errorf("ContextKey(<*>, <S>) = %q, want %q", got, "<*>_<S>")
	}
	if got := ContextKey("NOUN nomn", "VERB"); got != "NOUN nomn_VERB" {
		t.Errorf("ContextKey = %q", got)
	}
}

func TestRuleKey(t *testing.T) {
	tests := []struct {
		a    Analysis
		want string
	}{
		{Analysis{POS: "NOUN", Number: "sing", Case: "nomn"}, "NOUN_sing_nomn"},
		{Analysis{POS: "ADJF", Number: "plur", Case: "gent"}, "ADJF_plur_gent"},
		{Analysis{POS: "VERB", Number: "sing"}, "VERB"},
		{Analysis{POS: "PREP"}, "PREP"},
	}
	for _, tt := range tests {
		if got := tt.a.RuleKey(); got != tt.want {
			t.Errorf("RuleKey(%+v) = %q, want %q", tt.a, got, tt.want)
		}
	}
}

func TestValidateRuleKey(t *testing.T) {
	valid := []string{"NOUN_sing_nomn", "ADJF_plur_loc2", "VERB", "PREP", "NUMR_sing_acc2"}
	for _, term := range valid {
		if err := ValidateRuleKey(term); err != nil {
			t.Errorf("ValidateRuleKey(%q) = %v, want nil", term, err)
		}
	}

	invalid := []string{"NOUN", "NOUN_sing", "NOUN_sing_nomn_x", "VERB_sing_nomn", "NOUN_dual_nomn", "NOUN_sing_xxxx", "noun", ""}
	for _, term := range invalid {
		err := ValidateRuleKey(term)
		if err == nil {
			t.Errorf("ValidateRuleKey(%q) = nil, want error", term)
			continue
		}
		if !errors.Is(err, internalerr.ErrInvalidRuleToken) {
			t.Errorf("ValidateRuleKey(%q) error %v should wrap ErrInvalidRuleToken", term, err)
		}
		var tagErr *InvalidTagError
		if !errors.As(err, &tagErr) || tagErr.Term != term {
			t.Errorf("ValidateRuleKey(%q) should identify the offending term, got %v", term, err)
		}
	}
}

func TestTokenHelpers(t *testing.T) {
	tok := Token{Candidates: []Analysis{
		{Surface: "стали", Lemma: "сталь", TagKey: "NOUN gent", Score: 0.6},
		{Surface: "стали", Lemma: "стать", TagKey: "VERB", Score: 0.4},
	}}
	if tok.Top().Lemma != "сталь" {
		t.Errorf("Top() = %+v, want first candidate", tok.Top())
	}
	if tok.IsPunct() {
		t.Error("word token reported as punctuation")
	}

	p := PunctToken(",")
	if !p.IsPunct() || p.Text() != "," {
		t.Errorf("PunctToken(,) = %+v", p)
	}
	if (Token{Candidates: []Analysis{{Surface: ".", TagKey: Punct}}}).IsPunct() != true {
		t.Error("PNCT-tagged token should be punctuation")
	}
	if (Token{}).Top() != (Analysis{}) {
		t.Error("Top() of empty token should be zero value")
	}
}

func TestWordVariants(t *testing.T) {
	r := ResolvedWord(Analysis{Surface: "дом", Lemma: "дом"})
	if r.IsLiteral() || r.Text != "дом" || r.Kind.String() != "resolved" {
		t.Errorf("ResolvedWord = %+v", r)
	}
	l := LiteralWord("!")
	if !l.IsLiteral() || l.Text != "!" || l.Kind.String() != "literal" {
		t.Errorf("LiteralWord = %+v", l)
	}
}

func TestSentenceValidate(t *testing.T) {
	ok := Sentence{PunctToken("."), {Candidates: []Analysis{{Surface: "a", TagKey: "NOUN"}}}}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate = %v", err)
	}

	bad := Sentence{PunctToken("."), {}}
	if err := bad.Validate(); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Validate = %v, want ErrInvalidInput", err)
	}
}
