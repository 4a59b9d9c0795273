package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/tripmart/fulfillment/internal/domain/errors"
	"github.com/tripmart/fulfillment/internal/domain/model"
)

func newMockStorage(t *testing.T) (*Storage, pgxmockv3.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmockv3.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	storage := &Storage{pool: mock, logger: logger}
	return storage, mock
}

func expectSchema(mock pgxmockv3.PgxPoolIface) {
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS fulfillment_orders").WillReturnResult(pgxmockv3.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_fulfillment_orders_user ON fulfillment_orders").WillReturnResult(pgxmockv3.NewResult("CREATE", 0))
}

func finalizedState(orderID string) model.OrderState {
	at := time.Unix(1700000000, 0).UTC()
	return model.OrderState{
		Order: model.Order{ID: orderID, UserID: "u-1", Items: []model.Item{
			{ID: "T1", Category: model.CategoryTaxi, Taxi: &model.TaxiDetails{Name: "City Cab"}},
		}},
		Phase:    model.PhaseResolved,
		Accepted: []string{"T1"},
		Completions: map[string]model.Completion{
			"T1": {Category: model.CategoryTaxi, ItemID: "T1", Outcome: model.OutcomeSucceeded},
		},
		AllDispatchAttempted: true,
		FinalizedAt:          &at,
	}
}

func TestInitSchema(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	expectSchema(mock)
	if err := storage.initSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInitSchemaError(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS fulfillment_orders").WillReturnError(errors.New("permission denied"))
	if err := storage.initSchema(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestSaveFinalState(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	state := finalizedState("o-1")
	payload, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}

	mock.ExpectExec("INSERT INTO fulfillment_orders").
		WithArgs("o-1", "u-1", string(model.PhaseResolved), false, false, payload, *state.FinalizedAt).
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))

	if err := storage.SaveFinalState(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSaveFinalStateRejectsLiveOrder(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	state := finalizedState("o-1")
	state.FinalizedAt = nil
	if err := storage.SaveFinalState(context.Background(), state); !errors.Is(err, domainErrors.ErrInvalidArgs) {
		t.Fatalf("expected invalid-args, got %v", err)
	}
}

func TestSaveFinalStateExecError(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO fulfillment_orders").WillReturnError(errors.New("connection reset"))
	if err := storage.SaveFinalState(context.Background(), finalizedState("o-1")); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetFinalState(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	want := finalizedState("o-1")
	payload, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}

	mock.ExpectQuery("SELECT state FROM fulfillment_orders").
		WithArgs("o-1").
		WillReturnRows(pgxmockv3.NewRows([]string{"state"}).AddRow(payload))

	got, err := storage.GetFinalState(context.Background(), "o-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Order.ID != "o-1" || got.Phase != model.PhaseResolved {
		t.Fatalf("unexpected state %+v", got)
	}
	if got.Completions["T1"].Outcome != model.OutcomeSucceeded {
		t.Fatalf("unexpected completions %+v", got.Completions)
	}
	if got.FinalizedAt == nil || !got.FinalizedAt.Equal(*want.FinalizedAt) {
		t.Fatalf("unexpected finalized_at %v", got.FinalizedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetFinalStateNotFound(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT state FROM fulfillment_orders").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	if _, err := storage.GetFinalState(context.Background(), "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestGetFinalStateCorruptPayload(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT state FROM fulfillment_orders").
		WithArgs("o-1").
		WillReturnRows(pgxmockv3.NewRows([]string{"state"}).AddRow([]byte("{broken")))

	if _, err := storage.GetFinalState(context.Background(), "o-1"); err == nil {
		t.Fatal("expected error for corrupt payload")
	}
}

func TestNewRejectsBadDSN(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	if _, err := New(context.Background(), "://not-a-dsn", logger); err == nil {
		t.Fatal("expected error for malformed dsn")
	}
}

func TestCloseNilPool(t *testing.T) {
	storage := &Storage{}
	storage.Close()
}
