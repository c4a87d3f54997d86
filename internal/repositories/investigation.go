// Package repositories persists player progress between requests.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Roderick111/auror/internal/errors"
	"github.com/Roderick111/auror/internal/models"
	"github.com/Roderick111/auror/internal/sqlite"
)

// ErrNotFound marks a missing investigation state. Callers typically react by
// starting a fresh investigation for the player.
var ErrNotFound = errors.NewSentinel("investigation state not found")

// InvestigationRepository stores each player's InvestigationState as a JSON
// document keyed by (player id, case id). The engine owns all state
// transitions; the repository only moves the document in and out of SQLite.
type InvestigationRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewInvestigationRepository(dbs *sqlite.Database, logger *slog.Logger) *InvestigationRepository {
	return &InvestigationRepository{
		dbs:    dbs,
		logger: logger.With("source", "InvestigationRepository"),
	}
}

// Get loads the player's state for a case. Returns ErrNotFound when the
// player has not started the case.
func (r *InvestigationRepository) Get(ctx context.Context, playerID, caseID string) (*models.InvestigationState, error) {
	var encoded string
	stmt := `SELECT state FROM investigation_states WHERE player_id = ? AND case_id = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &encoded, stmt, playerID, caseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrNotFound, "read investigation state", slog.String("case_id", caseID))
		}
		return nil, errors.Wrap(err, "read investigation state", slog.String("case_id", caseID))
	}
	var state models.InvestigationState
	if err := json.Unmarshal([]byte(encoded), &state); err != nil {
		return nil, errors.Wrap(err, "decode investigation state", slog.String("case_id", caseID))
	}
	return &state, nil
}

// Put upserts the player's state for the case named in state.CaseID.
func (r *InvestigationRepository) Put(ctx context.Context, playerID string, state *models.InvestigationState) error {
	encoded, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "encode investigation state")
	}
	stmt := `INSERT INTO investigation_states (player_id, case_id, state, updated_at)
VALUES (:player_id, :case_id, :state, :updated_at)
ON CONFLICT (player_id, case_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`
	if _, err = r.dbs.ReadWrite.NamedExecContext(ctx, stmt, map[string]any{
		"player_id":  playerID,
		"case_id":    state.CaseID,
		"state":      string(encoded),
		"updated_at": time.Now().UTC(),
	}); err != nil {
		return errors.Wrap(err, "upsert investigation state", slog.String("case_id", state.CaseID))
	}
	return nil
}

// Delete removes the stored state, for example when the player resets a case.
// Deleting a state that does not exist is not an error.
func (r *InvestigationRepository) Delete(ctx context.Context, playerID, caseID string) error {
	stmt := `DELETE FROM investigation_states WHERE player_id = ? AND case_id = ?`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, playerID, caseID); err != nil {
		return errors.Wrap(err, "delete investigation state", slog.String("case_id", caseID))
	}
	return nil
}

// StartedCase is a roster entry for one case the player has progress in.
type StartedCase struct {
	CaseID    string    `db:"case_id"`
	UpdatedAt time.Time `db:"updated_at"`
	Completed bool      `db:"completed"`
}

// List returns the cases the player has progress in, most recently played
// first. Completed is read straight out of the state document: a stored
// verdict means the investigation is over.
func (r *InvestigationRepository) List(ctx context.Context, playerID string) ([]StartedCase, error) {
	var started []StartedCase
	stmt := `SELECT case_id, updated_at, json_extract(state, '$.verdict') IS NOT NULL AS completed
FROM investigation_states WHERE player_id = ? ORDER BY updated_at DESC`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &started, stmt, playerID); err != nil {
		return nil, errors.Wrap(err, "list investigation states")
	}
	return started, nil
}
