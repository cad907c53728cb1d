package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/workforce-analytics/internal/pkg/database"
)

// TestDatabaseSetup wraps a migrated test database
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies migrations. The
// test is skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(context.Background(), dsn)
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(db.Close)

	require.NoError(t, database.RunMigrations(db))

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(context.Background()))
	return setup
}

// TruncateAllTables removes every row from the analytics tables
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"attendance_records",
		"employee_requests",
		"employees",
		"forecast_model_state",
		"forecast_training_logs",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *TestDatabaseSetup) InsertEmployee(t *testing.T, name, department, role string, active bool) string {
	t.Helper()

	id := uuid.Must(uuid.NewV7()).String()
	_, err := s.DB.Exec(context.Background(), `
		INSERT INTO employees (id, username, name, email, department, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, "user-"+id, name, name+"@example.com", department, role, active)
	require.NoError(t, err)
	return id
}

func (s *TestDatabaseSetup) InsertRecord(t *testing.T, employeeID string, date time.Time, status, recType string, checkIn *string, hours string) {
	t.Helper()

	_, err := s.DB.Exec(context.Background(), `
		INSERT INTO attendance_records (id, employee_id, date, status, type, check_in_time, total_hours)
		VALUES ($1, $2, $3, $4, $5, $6::time, $7::numeric)
	`, uuid.Must(uuid.NewV7()).String(), employeeID, date, status, recType, checkIn, hours)
	require.NoError(t, err)
}

func (s *TestDatabaseSetup) InsertRequest(t *testing.T, employeeID, requestType string, start, end time.Time, status string) {
	t.Helper()

	_, err := s.DB.Exec(context.Background(), `
		INSERT INTO employee_requests (id, employee_id, request_type, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.Must(uuid.NewV7()).String(), employeeID, requestType, start, end, status)
	require.NoError(t, err)
}
