// Package caseload reads case definition files and validates them before
// they reach the engine. The engine trusts every id it sees at runtime, so
// all reference checking happens here: a case that fails validation is
// skipped with a logged error, never a crash.
package caseload

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Roderick111/auror/internal/engine"
	"github.com/Roderick111/auror/internal/errors"
	"github.com/Roderick111/auror/internal/models"
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Catalog is the set of playable cases, in filename order.
type Catalog struct {
	cases []*models.Case
	byID  map[string]*models.Case
}

// All returns the cases in load order.
func (c *Catalog) All() []*models.Case {
	return c.cases
}

// ByID returns a case by id.
func (c *Catalog) ByID(id string) (*models.Case, bool) {
	found, ok := c.byID[id]
	return found, ok
}

// Len returns the number of loaded cases.
func (c *Catalog) Len() int {
	return len(c.cases)
}

// Parse decodes and validates one case definition. The returned warnings
// flag playable-but-suspect constructs: secrets whose triggers will be
// disabled and tier-2 hypotheses that can never unlock.
func Parse(data []byte) (*models.Case, []string, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var c models.Case
	if err := decoder.Decode(&c); err != nil {
		return nil, nil, errors.Wrap(err, "decode case file")
	}

	warnings, err := validateCase(&c)
	if err != nil {
		return nil, warnings, err
	}
	return &c, warnings, nil
}

// Load reads and validates a single case file.
func Load(path string) (*models.Case, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read case file", slog.String("path", path))
	}
	c, warnings, err := Parse(data)
	if err != nil {
		return nil, warnings, errors.Wrap(err, "load case file", slog.String("path", path))
	}
	return c, warnings, nil
}

// LoadDir loads every *.yaml/*.yml case under dir into a catalog. Files that
// fail validation are logged and skipped; duplicate case ids keep the first
// occurrence. An unreadable directory is an error, an empty one is not.
func LoadDir(ctx context.Context, logger *slog.Logger, dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read case directory", slog.String("dir", dir))
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	catalog := &Catalog{byID: make(map[string]*models.Case)}
	for _, path := range paths {
		c, warnings, err := Load(path)
		if err != nil {
			logger.LogAttrs(ctx, slog.LevelError, "skipping invalid case file",
				slog.String("path", path),
				errors.SlogError(err),
			)
			continue
		}
		for _, warning := range warnings {
			logger.LogAttrs(ctx, slog.LevelWarn, "case warning",
				slog.String("path", path),
				slog.String("caseID", c.ID),
				slog.String("warning", warning),
			)
		}
		if _, dup := catalog.byID[c.ID]; dup {
			logger.LogAttrs(ctx, slog.LevelError, "skipping duplicate case id",
				slog.String("path", path),
				slog.String("caseID", c.ID),
			)
			continue
		}
		catalog.cases = append(catalog.cases, c)
		catalog.byID[c.ID] = c
		logger.LogAttrs(ctx, slog.LevelInfo, "loaded case",
			slog.String("caseID", c.ID),
			slog.String("title", c.Title),
		)
	}
	return catalog, nil
}

// validateCase runs the semantic pass on top of the struct-tag validation:
// unique ids, no dangling evidence references from contradictions, unlock
// trees or trigger conditions, known threshold metrics, and exactly one
// correct hypothesis.
func validateCase(c *models.Case) ([]string, error) {
	var problems []error
	var warnings []string

	if err := structValidator.Struct(c); err != nil {
		problems = append(problems, errors.Wrap(err, "structural validation"))
	}

	evidence := make(map[string]bool, len(c.Evidence))
	for _, ev := range c.Evidence {
		if evidence[ev.ID] {
			problems = append(problems, errors.New("duplicate evidence id", slog.String("evidenceID", ev.ID)))
		}
		evidence[ev.ID] = true
	}

	witnessIDs := make(map[string]bool, len(c.Witnesses))
	secretIDs := make(map[string]bool)
	for _, w := range c.Witnesses {
		if witnessIDs[w.ID] {
			problems = append(problems, errors.New("duplicate witness id", slog.String("witnessID", w.ID)))
		}
		witnessIDs[w.ID] = true

		for _, secret := range w.Secrets {
			if secretIDs[secret.ID] {
				problems = append(problems, errors.New("duplicate secret id", slog.String("secretID", secret.ID)))
			}
			secretIDs[secret.ID] = true

			cond, err := engine.ParseTrigger(secret.Condition)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf(
					"secret %q has a malformed trigger and will be disabled: %v", secret.ID, err))
				continue
			}
			for _, ref := range cond.EvidenceRefs() {
				if !evidence[ref] {
					problems = append(problems, errors.New("trigger references unknown evidence",
						slog.String("secretID", secret.ID),
						slog.String("evidenceID", ref),
					))
				}
			}
		}
	}

	contradictionIDs := make(map[string]bool, len(c.Contradictions))
	for _, con := range c.Contradictions {
		if contradictionIDs[con.ID] {
			problems = append(problems, errors.New("duplicate contradiction id", slog.String("contradictionID", con.ID)))
		}
		contradictionIDs[con.ID] = true

		if len(con.Between) == 2 && con.Between[0] == con.Between[1] {
			problems = append(problems, errors.New("contradiction pairs an evidence item with itself",
				slog.String("contradictionID", con.ID)))
		}
		for _, ref := range con.Between {
			if !evidence[ref] {
				problems = append(problems, errors.New("contradiction references unknown evidence",
					slog.String("contradictionID", con.ID),
					slog.String("evidenceID", ref),
				))
			}
		}
	}

	hypothesisIDs := make(map[string]bool, len(c.Hypotheses))
	correct := 0
	for _, h := range c.Hypotheses {
		if hypothesisIDs[h.ID] {
			problems = append(problems, errors.New("duplicate hypothesis id", slog.String("hypothesisID", h.ID)))
		}
		hypothesisIDs[h.ID] = true

		if h.Correct {
			correct++
		}
		if h.Tier == models.TierTwo && len(h.Unlock) == 0 {
			warnings = append(warnings, fmt.Sprintf(
				"tier-2 hypothesis %q has no unlock requirements and is permanently locked", h.ID))
		}
		for i := range h.Unlock {
			problems = append(problems, validateRequirement(&h.Unlock[i], h.ID, evidence)...)
		}
	}
	if correct != 1 {
		problems = append(problems, errors.New("case must define exactly one correct hypothesis",
			slog.String("caseID", c.ID),
			slog.Int("correct", correct),
		))
	}

	return warnings, errors.Join(problems...)
}

func validateRequirement(req *models.UnlockRequirement, hypothesisID string, evidence map[string]bool) []error {
	var problems []error
	switch req.Kind {
	case models.RequirementEvidence:
		if !evidence[req.EvidenceID] {
			problems = append(problems, errors.New("unlock requirement references unknown evidence",
				slog.String("hypothesisID", hypothesisID),
				slog.String("evidenceID", req.EvidenceID),
			))
		}
	case models.RequirementThreshold:
		if !knownMetric(req.Metric) {
			problems = append(problems, errors.New("unlock threshold uses unknown metric",
				slog.String("hypothesisID", hypothesisID),
				slog.String("metric", req.Metric),
			))
		}
		if req.Threshold < 0 {
			problems = append(problems, errors.New("unlock threshold is negative",
				slog.String("hypothesisID", hypothesisID),
				slog.String("metric", req.Metric),
			))
		}
	case models.RequirementAllOf, models.RequirementAnyOf:
		if len(req.Children) == 0 {
			problems = append(problems, errors.New("composite unlock requirement has no children",
				slog.String("hypothesisID", hypothesisID),
				slog.String("kind", string(req.Kind)),
			))
		}
		for i := range req.Children {
			problems = append(problems, validateRequirement(&req.Children[i], hypothesisID, evidence)...)
		}
	default:
		problems = append(problems, errors.New("unknown unlock requirement kind",
			slog.String("hypothesisID", hypothesisID),
			slog.String("kind", string(req.Kind)),
		))
	}
	return problems
}

func knownMetric(name string) bool {
	for _, m := range models.KnownMetrics() {
		if m == name {
			return true
		}
	}
	return false
}

// Describe returns a one-line human summary of a case for roster listings.
func Describe(c *models.Case) string {
	return fmt.Sprintf("%s: %s (budget %d, evidence %d, witnesses %d, contradictions %d, hypotheses %d)",
		c.ID, c.Title, c.Budget, len(c.Evidence), len(c.Witnesses), len(c.Contradictions), len(c.Hypotheses))
}
