package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"maintenance-qa-be/internal/pkg/logger"
)

// Result is the bounded output of one query execution. It lives only
// for the duration of the request.
type Result struct {
	Rows      []map[string]interface{}
	RowCount  int
	Duration  time.Duration
	Truncated bool
}

// ErrorKind classifies execution failures.
type ErrorKind string

const (
	ErrKindTimeout    ErrorKind = "timeout"
	ErrKindConnection ErrorKind = "connection"
	ErrKindShape      ErrorKind = "shape"
)

// ExecutionError is a typed failure from the data store.
type ExecutionError struct {
	Kind ErrorKind
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution %s: %v", e.Kind, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

type Config struct {
	MaxRows int
	Timeout time.Duration
}

// Adapter runs validated queries against the relational store. It
// accepts only approved or sanitized query text; the hard row cap and
// statement timeout apply regardless of any LIMIT already present.
// It never retries: re-running an expensive read is the caller's call.
type Adapter struct {
	db  *gorm.DB
	cfg Config
	log logger.ILogger
}

func New(db *gorm.DB, cfg Config, log logger.ILogger) *Adapter {
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 500
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	return &Adapter{db: db, cfg: cfg, log: log}
}

// Execute runs the query with the configured statement timeout and
// returns at most MaxRows rows, flagging truncation.
func (a *Adapter) Execute(ctx context.Context, query string) (*Result, error) {
	execCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	start := time.Now()
	rows, err := a.db.WithContext(execCtx).Raw(query).Rows()
	if err != nil {
		return nil, a.classify(execCtx, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &ExecutionError{Kind: ErrKindShape, Err: err}
	}

	result := &Result{}
	for rows.Next() {
		if result.RowCount >= a.cfg.MaxRows {
			result.Truncated = true
			break
		}

		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, &ExecutionError{Kind: ErrKindShape, Err: err}
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result.Rows = append(result.Rows, row)
		result.RowCount++
	}
	if err := rows.Err(); err != nil {
		return nil, a.classify(execCtx, err)
	}

	result.Duration = time.Since(start)
	a.log.Debug("executor", "query executed", map[string]interface{}{
		"rows":      result.RowCount,
		"truncated": result.Truncated,
		"ms":        result.Duration.Milliseconds(),
	})
	return result, nil
}

func (a *Adapter) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &ExecutionError{Kind: ErrKindTimeout, Err: err}
	}
	return &ExecutionError{Kind: ErrKindConnection, Err: err}
}
