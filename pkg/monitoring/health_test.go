package monitoring

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestCheckHealthAggregation(t *testing.T) {
	hc := NewHealthChecker("coach", "test")
	hc.AddCheck("ok", func() CheckResult {
		return CheckResult{Status: StatusHealthy}
	})

	if got := hc.CheckHealth().Status; got != StatusHealthy {
		t.Fatalf("expected healthy, got %s", got)
	}

	hc.AddCheck("warming", func() CheckResult {
		return CheckResult{Status: StatusDegraded}
	})
	if got := hc.CheckHealth().Status; got != StatusDegraded {
		t.Fatalf("expected degraded, got %s", got)
	}

	hc.AddCheck("broken", func() CheckResult {
		return CheckResult{Status: StatusUnhealthy}
	})
	if got := hc.CheckHealth().Status; got != StatusUnhealthy {
		t.Fatalf("expected unhealthy, got %s", got)
	}
}

func TestConfigurationHealthCheck(t *testing.T) {
	check := ConfigurationHealthCheck(map[string]string{
		"LLM_API_KEY": "secret",
		"DATA_DIR":    "",
	})
	result := check()
	if result.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy for missing config, got %s", result.Status)
	}

	check = ConfigurationHealthCheck(map[string]string{"LLM_API_KEY": "secret"})
	if result := check(); result.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %s", result.Status)
	}
}

func TestDatabaseHealthCheck(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectPing()
	check := DatabaseHealthCheck(db)
	if result := check(); result.Status != StatusHealthy {
		t.Fatalf("expected healthy on successful ping, got %s", result.Status)
	}

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	if result := check(); result.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy on ping failure, got %s", result.Status)
	}

	if result := DatabaseHealthCheck(nil)(); result.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy for nil handle, got %s", result.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIndexHealthCheck(t *testing.T) {
	check := IndexHealthCheck(func(ctx context.Context) (int, error) { return 12, nil })
	if result := check(); result.Status != StatusHealthy {
		t.Fatalf("expected healthy for populated index, got %s", result.Status)
	}

	check = IndexHealthCheck(func(ctx context.Context) (int, error) { return 0, nil })
	if result := check(); result.Status != StatusDegraded {
		t.Fatalf("expected degraded for empty index, got %s", result.Status)
	}

	check = IndexHealthCheck(func(ctx context.Context) (int, error) {
		return 0, errors.New("db closed")
	})
	if result := check(); result.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy on count error, got %s", result.Status)
	}
}
