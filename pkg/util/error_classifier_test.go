package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestJSONErrorsNotRetryable(t *testing.T) {
	var target struct{ N int }
	err := json.Unmarshal([]byte("{nope"), &target)
	if err == nil {
		t.Fatal("expected decode error")
	}

	retryable, errType := IsRetryableError(err)
	if retryable {
		t.Fatal("json decode errors must not be retryable")
	}
	if errType != "json_decode_error" {
		t.Fatalf("expected json_decode_error, got %q", errType)
	}
}

func TestNoRowsNotRetryable(t *testing.T) {
	retryable, errType := IsRetryableError(fmt.Errorf("lookup: %w", pgx.ErrNoRows))
	if retryable {
		t.Fatal("missing rows must not be retryable")
	}
	if errType != "row_not_found" {
		t.Fatalf("expected row_not_found, got %q", errType)
	}
}

func TestDuplicateKeyNotRetryable(t *testing.T) {
	retryable, errType := IsRetryableError(errors.New(`ERROR: duplicate key value violates unique constraint "progress_snapshots_task_id_snapshot_date_key"`))
	if retryable {
		t.Fatal("duplicate key must not be retryable")
	}
	if errType != "duplicate_key" {
		t.Fatalf("expected duplicate_key, got %q", errType)
	}
}

func TestConnectionErrorsRetryable(t *testing.T) {
	retryable, errType := IsRetryableError(errors.New("failed to acquire connection from pool"))
	if !retryable {
		t.Fatal("connection errors must be retryable")
	}
	if errType != "db_connection_error" {
		t.Fatalf("expected db_connection_error, got %q", errType)
	}
}

func TestDeadlineExceededRetryable(t *testing.T) {
	retryable, errType := IsRetryableError(context.DeadlineExceeded)
	if !retryable {
		t.Fatal("deadline exceeded must be retryable")
	}
	if errType != "timeout" {
		t.Fatalf("expected timeout, got %q", errType)
	}
}

func TestContextCanceledNotRetryable(t *testing.T) {
	retryable, _ := IsRetryableError(context.Canceled)
	if retryable {
		t.Fatal("cancellation must not be retryable")
	}
}

func TestNilError(t *testing.T) {
	retryable, errType := IsRetryableError(nil)
	if retryable || errType != "" {
		t.Fatalf("nil error should classify as (false, \"\"), got (%v, %q)", retryable, errType)
	}
}

func TestShouldRetry(t *testing.T) {
	if ShouldRetry(3, 5, false) {
		t.Fatal("non-retryable errors never retry")
	}
	if !ShouldRetry(3, 5, true) {
		t.Fatal("retryable under the cap should retry")
	}
	if ShouldRetry(6, 5, true) {
		t.Fatal("exhausted retries should stop")
	}
}
