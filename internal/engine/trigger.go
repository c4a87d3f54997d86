package engine

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/Roderick111/auror/internal/errors"
)

// ErrMalformedTrigger marks a trigger condition that failed to parse. It is a
// load-time concern: the owning secret is disabled and the condition never
// evaluates at runtime.
var ErrMalformedTrigger = errors.NewSentinel("malformed trigger condition")

// TriggerCondition is a parsed secret trigger. The grammar is deliberately
// small:
//
//	condition := term (("AND"|"OR") term)*
//	term      := "evidence:" ID | "trust" op NUMBER
//	op        := ">" | "<" | ">=" | "<=" | "=="
//
// Terms combine left to right with no precedence between AND and OR.
type TriggerCondition struct {
	source string
	first  triggerTerm
	rest   []triggerClause
}

type triggerClause struct {
	conjunctive bool // true for AND, false for OR
	term        triggerTerm
}

type triggerTerm struct {
	evidenceID string // evidence term when non-empty
	trustOp    string // trust term otherwise
	trustValue int
}

const evidencePrefix = "evidence:"

var trustOps = map[string]bool{">": true, "<": true, ">=": true, "<=": true, "==": true}

// ParseTrigger parses a trigger condition. Callers treat a failure as a
// configuration error for the owning secret, never as a runtime fault.
func ParseTrigger(source string) (*TriggerCondition, error) {
	tokens := strings.Fields(source)
	if len(tokens) == 0 {
		return nil, errors.Wrap(ErrMalformedTrigger, "empty condition")
	}

	cond := &TriggerCondition{source: source}
	term, tokens, err := parseTriggerTerm(tokens)
	if err != nil {
		return nil, errors.Wrap(err, "parse condition", slog.String("condition", source))
	}
	cond.first = term

	for len(tokens) > 0 {
		op := tokens[0]
		if op != "AND" && op != "OR" {
			return nil, errors.Wrap(ErrMalformedTrigger, "expected AND or OR",
				slog.String("condition", source),
				slog.String("got", op),
			)
		}
		term, tokens, err = parseTriggerTerm(tokens[1:])
		if err != nil {
			return nil, errors.Wrap(err, "parse condition", slog.String("condition", source))
		}
		cond.rest = append(cond.rest, triggerClause{conjunctive: op == "AND", term: term})
	}
	return cond, nil
}

func parseTriggerTerm(tokens []string) (triggerTerm, []string, error) {
	if len(tokens) == 0 {
		return triggerTerm{}, nil, errors.Wrap(ErrMalformedTrigger, "missing term")
	}

	if strings.HasPrefix(tokens[0], evidencePrefix) {
		id := strings.TrimPrefix(tokens[0], evidencePrefix)
		if id == "" {
			return triggerTerm{}, nil, errors.Wrap(ErrMalformedTrigger, "empty evidence id")
		}
		return triggerTerm{evidenceID: id}, tokens[1:], nil
	}

	if tokens[0] == "trust" {
		if len(tokens) < 3 {
			return triggerTerm{}, nil, errors.Wrap(ErrMalformedTrigger, "incomplete trust comparison")
		}
		op := tokens[1]
		if !trustOps[op] {
			return triggerTerm{}, nil, errors.Wrap(ErrMalformedTrigger, "unknown comparison operator",
				slog.String("op", op))
		}
		value, err := strconv.Atoi(tokens[2])
		if err != nil {
			return triggerTerm{}, nil, errors.Wrap(ErrMalformedTrigger, "trust comparison needs a number",
				slog.String("got", tokens[2]))
		}
		return triggerTerm{trustOp: op, trustValue: value}, tokens[3:], nil
	}

	return triggerTerm{}, nil, errors.Wrap(ErrMalformedTrigger, "unknown term",
		slog.String("got", tokens[0]))
}

// String returns the original condition source text.
func (c *TriggerCondition) String() string {
	return c.source
}

// Eval evaluates the condition against the collected evidence set and the
// owning witness's current trust. Terms fold left to right.
func (c *TriggerCondition) Eval(evidence map[string]bool, trust int) bool {
	result := c.first.eval(evidence, trust)
	for _, clause := range c.rest {
		if clause.conjunctive {
			result = result && clause.term.eval(evidence, trust)
		} else {
			result = result || clause.term.eval(evidence, trust)
		}
	}
	return result
}

func (t triggerTerm) eval(evidence map[string]bool, trust int) bool {
	if t.evidenceID != "" {
		return evidence[t.evidenceID]
	}
	switch t.trustOp {
	case ">":
		return trust > t.trustValue
	case "<":
		return trust < t.trustValue
	case ">=":
		return trust >= t.trustValue
	case "<=":
		return trust <= t.trustValue
	case "==":
		return trust == t.trustValue
	}
	return false
}

// EvidenceRefs returns every evidence id the condition mentions, for
// load-time reference validation.
func (c *TriggerCondition) EvidenceRefs() []string {
	var refs []string
	if c.first.evidenceID != "" {
		refs = append(refs, c.first.evidenceID)
	}
	for _, clause := range c.rest {
		if clause.term.evidenceID != "" {
			refs = append(refs, clause.term.evidenceID)
		}
	}
	return refs
}
