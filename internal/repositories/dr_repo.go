package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fleetgov/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type DrRepository interface {
	// CreateTx records a simulation attempt in its RUNNING state.
	CreateTx(ctx context.Context, tx pgx.Tx, sim *models.DrSimulation) error

	// FinishTx applies the single terminal transition. It only touches rows
	// still RUNNING, so a finished record can never be rewritten.
	FinishTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string, finishedAt time.Time, rtoSeconds int64, notes string) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.DrSimulation, error)
	ListSimulations(ctx context.Context, limit, offset int) ([]*models.DrSimulation, error)

	// LatestSuccessfulForBackup is the promotion gate query: it matches on the
	// structured backup_id column, not on free text.
	LatestSuccessfulForBackup(ctx context.Context, backupID uuid.UUID) (*models.DrSimulation, error)

	CreateReportTx(ctx context.Context, tx pgx.Tx, report *models.DrReport) error
	ListReports(ctx context.Context, limit, offset int) ([]*models.DrReport, error)
}

type drRepo struct {
	db DB
}

func NewDrRepo(db DB) DrRepository {
	return &drRepo{db: db}
}

const drColumns = "id, kind, backup_id, backup_location, status, started_at, finished_at, rto_seconds, rpo_description, executed_by, notes"

func scanSimulation(row pgx.Row) (*models.DrSimulation, error) {
	sim := &models.DrSimulation{}
	err := row.Scan(&sim.ID, &sim.Kind, &sim.BackupID, &sim.BackupLocation, &sim.Status, &sim.StartedAt, &sim.FinishedAt, &sim.RtoSeconds, &sim.RpoDescription, &sim.ExecutedBy, &sim.Notes)
	if err != nil {
		return nil, err
	}
	return sim, nil
}

func (r *drRepo) CreateTx(ctx context.Context, tx pgx.Tx, sim *models.DrSimulation) error {
	query := `
		INSERT INTO dr_simulations (id, kind, backup_id, backup_location, status, started_at, rpo_description, executed_by, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := tx.Exec(ctx, query, sim.ID, sim.Kind, sim.BackupID, sim.BackupLocation, sim.Status, sim.StartedAt, sim.RpoDescription, sim.ExecutedBy, sim.Notes)
	return err
}

func (r *drRepo) FinishTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string, finishedAt time.Time, rtoSeconds int64, notes string) error {
	query := `
		UPDATE dr_simulations
		SET status = $1, finished_at = $2, rto_seconds = $3, notes = $4
		WHERE id = $5 AND status = 'RUNNING'
	`
	tag, err := tx.Exec(ctx, query, status, finishedAt, rtoSeconds, notes, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("dr simulation %s is not running", id)
	}
	return nil
}

func (r *drRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.DrSimulation, error) {
	query := `SELECT ` + drColumns + ` FROM dr_simulations WHERE id = $1`
	return scanSimulation(r.db.QueryRow(ctx, query, id))
}

func (r *drRepo) ListSimulations(ctx context.Context, limit, offset int) ([]*models.DrSimulation, error) {
	query := `
		SELECT ` + drColumns + `
		FROM dr_simulations
		ORDER BY started_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sims []*models.DrSimulation
	for rows.Next() {
		sim, err := scanSimulation(rows)
		if err != nil {
			return nil, err
		}
		sims = append(sims, sim)
	}
	return sims, rows.Err()
}

func (r *drRepo) LatestSuccessfulForBackup(ctx context.Context, backupID uuid.UUID) (*models.DrSimulation, error) {
	query := `
		SELECT ` + drColumns + `
		FROM dr_simulations
		WHERE backup_id = $1 AND status = 'SUCCESS'
		ORDER BY finished_at DESC
		LIMIT 1
	`
	return scanSimulation(r.db.QueryRow(ctx, query, backupID))
}

func (r *drRepo) CreateReportTx(ctx context.Context, tx pgx.Tx, report *models.DrReport) error {
	query := `
		INSERT INTO dr_reports (id, simulation_id, period, summary, generated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	var summaryBytes []byte
	if report.Summary != nil {
		var err error
		summaryBytes, err = json.Marshal(report.Summary)
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
	}
	_, err := tx.Exec(ctx, query, report.ID, report.SimulationID, report.Period, summaryBytes, report.GeneratedAt)
	return err
}

func (r *drRepo) ListReports(ctx context.Context, limit, offset int) ([]*models.DrReport, error) {
	query := `
		SELECT id, simulation_id, period, summary, generated_at
		FROM dr_reports
		ORDER BY generated_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*models.DrReport
	for rows.Next() {
		report := &models.DrReport{}
		var summaryBytes []byte
		if err := rows.Scan(&report.ID, &report.SimulationID, &report.Period, &summaryBytes, &report.GeneratedAt); err != nil {
			return nil, err
		}
		if len(summaryBytes) > 0 {
			if err := json.Unmarshal(summaryBytes, &report.Summary); err != nil {
				return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
			}
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
