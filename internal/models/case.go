package models

import (
	"gopkg.in/yaml.v3"

	"github.com/Roderick111/auror/internal/errors"
)

// Case is the immutable definition of a solvable mystery: its evidence catalog,
// interviewable witnesses, contradictions, and the hypothesis board. A Case is
// loaded and validated once and never mutated afterwards; all per-player
// progress lives in [InvestigationState].
type Case struct {
	ID             string          `yaml:"id" validate:"required"`
	Title          string          `yaml:"title" validate:"required"`
	Synopsis       string          `yaml:"synopsis"`
	Budget         int             `yaml:"budget" validate:"gte=0"`
	Evidence       []Evidence      `yaml:"evidence" validate:"min=1,dive"`
	Witnesses      []Witness       `yaml:"witnesses" validate:"dive"`
	Contradictions []Contradiction `yaml:"contradictions" validate:"dive"`
	Hypotheses     []Hypothesis    `yaml:"hypotheses" validate:"min=1,dive"`
}

// Evidence is a single collectable item. Collecting it consumes Cost
// investigation points. Critical evidence feeds the scoring engine.
type Evidence struct {
	ID          string `yaml:"id" validate:"required"`
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description"`
	Critical    bool   `yaml:"critical"`
	Cost        int    `yaml:"cost" validate:"gte=0"`
}

// Witness is an interviewable character holding zero or more gated secrets.
type Witness struct {
	ID        string   `yaml:"id" validate:"required"`
	Name      string   `yaml:"name" validate:"required"`
	BaseTrust int      `yaml:"base_trust" validate:"gte=0,lte=100"`
	Secrets   []Secret `yaml:"secrets" validate:"dive"`
}

// Secret is witness-held information gated behind a trigger condition over
// collected evidence and current trust. Condition holds the trigger-condition
// source text; a condition that fails to parse at load time disables the
// secret so it never fires.
type Secret struct {
	ID        string `yaml:"id" validate:"required"`
	Condition string `yaml:"condition" validate:"required"`
	Text      string `yaml:"text" validate:"required"`
}

// Contradiction is a defined conflict between two specific evidence items,
// discovered once both are collected. Discovery and resolution status live in
// [InvestigationState], not here.
type Contradiction struct {
	ID          string   `yaml:"id" validate:"required"`
	Between     []string `yaml:"evidence" validate:"len=2,dive,required"`
	Description string   `yaml:"description" validate:"required"`
	Resolution  string   `yaml:"resolution"`
}

// Involves reports whether the contradiction references the given evidence id.
func (c Contradiction) Involves(evidenceID string) bool {
	for _, id := range c.Between {
		if id == evidenceID {
			return true
		}
	}
	return false
}

// Tier is the hypothesis availability level: tier 1 is always on the board,
// tier 2 must be unlocked.
type Tier int

const (
	TierOne Tier = 1
	TierTwo Tier = 2
)

// Hypothesis is a theory the player may eventually accuse with. Exactly one
// hypothesis per case is correct. Unlock lists requirement trees of which any
// single one suffices; it is ignored for tier 1.
type Hypothesis struct {
	ID        string     `yaml:"id" validate:"required"`
	Tier      Tier       `yaml:"tier" validate:"required,oneof=1 2"`
	Statement string     `yaml:"statement" validate:"required"`
	Correct   bool       `yaml:"correct"`
	Unlock    UnlockList `yaml:"unlock"`
}

// UnlockList is the case-file shape for a hypothesis's unlock requirements:
// a bare list of requirement trees, each independently sufficient.
type UnlockList []UnlockRequirement

// Requirement normalizes the implicit OR across the list into a single any_of
// tree so that evaluation has exactly one shape to deal with. It returns nil
// for an empty list, which for a tier-2 hypothesis means permanently locked.
func (l UnlockList) Requirement() *UnlockRequirement {
	switch len(l) {
	case 0:
		return nil
	case 1:
		return &l[0]
	default:
		return &UnlockRequirement{Kind: RequirementAnyOf, Children: l}
	}
}

// RequirementKind tags the variants of an [UnlockRequirement] tree node.
type RequirementKind string

const (
	RequirementEvidence  RequirementKind = "evidence_collected"
	RequirementAllOf     RequirementKind = "all_of"
	RequirementAnyOf     RequirementKind = "any_of"
	RequirementThreshold RequirementKind = "threshold_met"
)

// UnlockRequirement is one node of a recursively composable requirement tree.
// Exactly one variant is populated depending on Kind.
type UnlockRequirement struct {
	Kind       RequirementKind
	EvidenceID string              // RequirementEvidence
	Metric     string              // RequirementThreshold
	Threshold  int                 // RequirementThreshold
	Children   []UnlockRequirement // RequirementAllOf, RequirementAnyOf
}

var ErrUnknownRequirement = errors.NewSentinel("unknown unlock requirement variant")

// thresholdSpec is the case-file shape of a threshold_met leaf.
type thresholdSpec struct {
	Metric string `yaml:"metric"`
	Value  int    `yaml:"value"`
}

// UnmarshalYAML decodes the tagged case-file form of a requirement node:
//
//	- evidence: torn-sleeve
//	- threshold: { metric: points_spent, value: 30 }
//	- all_of: [ ... ]
//	- any_of: [ ... ]
func (r *UnlockRequirement) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Evidence  string              `yaml:"evidence"`
		AllOf     []UnlockRequirement `yaml:"all_of"`
		AnyOf     []UnlockRequirement `yaml:"any_of"`
		Threshold *thresholdSpec      `yaml:"threshold"`
	}
	if err := value.Decode(&raw); err != nil {
		return errors.Wrap(err, "decode unlock requirement")
	}

	variants := 0
	if raw.Evidence != "" {
		variants++
		r.Kind = RequirementEvidence
		r.EvidenceID = raw.Evidence
	}
	if raw.AllOf != nil {
		variants++
		r.Kind = RequirementAllOf
		r.Children = raw.AllOf
	}
	if raw.AnyOf != nil {
		variants++
		r.Kind = RequirementAnyOf
		r.Children = raw.AnyOf
	}
	if raw.Threshold != nil {
		variants++
		r.Kind = RequirementThreshold
		r.Metric = raw.Threshold.Metric
		r.Threshold = raw.Threshold.Value
	}
	if variants != 1 {
		return ErrUnknownRequirement
	}
	return nil
}

// EvidenceByID returns the evidence definition for id.
func (c *Case) EvidenceByID(id string) (Evidence, bool) {
	for _, e := range c.Evidence {
		if e.ID == id {
			return e, true
		}
	}
	return Evidence{}, false
}

// WitnessByID returns the witness definition for id.
func (c *Case) WitnessByID(id string) (Witness, bool) {
	for _, w := range c.Witnesses {
		if w.ID == id {
			return w, true
		}
	}
	return Witness{}, false
}

// ContradictionByID returns the contradiction definition for id.
func (c *Case) ContradictionByID(id string) (Contradiction, bool) {
	for _, con := range c.Contradictions {
		if con.ID == id {
			return con, true
		}
	}
	return Contradiction{}, false
}

// HypothesisByID returns the hypothesis definition for id.
func (c *Case) HypothesisByID(id string) (Hypothesis, bool) {
	for _, h := range c.Hypotheses {
		if h.ID == id {
			return h, true
		}
	}
	return Hypothesis{}, false
}

// CorrectHypothesis returns the single correct hypothesis of the case.
// Load-time validation guarantees exactly one exists.
func (c *Case) CorrectHypothesis() (Hypothesis, bool) {
	for _, h := range c.Hypotheses {
		if h.Correct {
			return h, true
		}
	}
	return Hypothesis{}, false
}

// Tier2Count returns how many tier-2 hypotheses the case defines.
func (c *Case) Tier2Count() int {
	n := 0
	for _, h := range c.Hypotheses {
		if h.Tier == TierTwo {
			n++
		}
	}
	return n
}

// CriticalEvidenceCount returns how many evidence items are marked critical.
func (c *Case) CriticalEvidenceCount() int {
	n := 0
	for _, e := range c.Evidence {
		if e.Critical {
			n++
		}
	}
	return n
}
