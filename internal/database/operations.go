package database

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/skout-hq/skout/internal/utils"
)

// Table represents a database table with common methods
type Table interface {
	TableName() string
}

// CRUD builds and runs the PostgreSQL statements the repositories share.
type CRUD struct {
	DB SQLDatabase
}

// NewCRUD creates a new CRUD instance on top of db
func NewCRUD(db SQLDatabase) *CRUD {
	return &CRUD{DB: db}
}

// Insert writes model as a new row. Nil pointer fields are left out so that
// column defaults (timestamps) apply.
func (c *CRUD) Insert(ctx context.Context, model Table) error {
	modelType := reflect.TypeOf(model).Elem()
	modelValue := reflect.ValueOf(model).Elem()

	var columns []string
	var placeholders []string
	var values []interface{}

	for i := 0; i < modelType.NumField(); i++ {
		dbTag := modelType.Field(i).Tag.Get("db")
		if dbTag == "" || dbTag == "-" {
			continue
		}

		fieldValue := modelValue.Field(i)
		if fieldValue.Kind() == reflect.Ptr && fieldValue.IsNil() {
			continue
		}

		columns = append(columns, dbTag)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(values)+1))
		values = append(values, toDriverValue(fieldValue.Interface()))
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		model.TableName(),
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	start := time.Now()
	_, err := c.DB.ExecContext(ctx, query, values...)
	utils.LogDBQuery(query, values, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to create record in %s: %w", model.TableName(), err)
	}
	return nil
}

// UpdateColumns sets exactly the given columns on the rows where keyColumn
// equals key and returns the number of rows changed. Columns are written in
// sorted order so the statement text is stable.
func (c *CRUD) UpdateColumns(ctx context.Context, table string, fields map[string]interface{}, keyColumn string, key interface{}) (int64, error) {
	if len(fields) == 0 {
		return 0, fmt.Errorf("no columns to update in %s", table)
	}

	columns := make([]string, 0, len(fields))
	for column := range fields {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	assignments := make([]string, 0, len(columns))
	values := make([]interface{}, 0, len(columns)+1)
	for i, column := range columns {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, i+1))
		values = append(values, toDriverValue(fields[column]))
	}
	values = append(values, key)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = $%d",
		table,
		strings.Join(assignments, ", "),
		keyColumn,
		len(values),
	)

	start := time.Now()
	result, err := c.DB.ExecContext(ctx, query, values...)
	utils.LogDBQuery(query, values, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to update record in %s: %w", table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}

// toDriverValue wraps string slices as PostgreSQL arrays.
func toDriverValue(v interface{}) interface{} {
	if s, ok := v.([]string); ok {
		if s == nil {
			s = []string{}
		}
		return pq.Array(s)
	}
	return v
}
