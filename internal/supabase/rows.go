package supabase

import (
	"context"
	"net/http"
	"net/url"

	"github.com/skout-hq/skout/internal/constants"
)

// Filter is one column condition of a rows query.
type Filter struct {
	Column   string
	Operator string
	Value    string
}

// Eq matches rows whose column equals value.
func Eq(column, value string) Filter {
	return Filter{Column: column, Operator: "eq", Value: value}
}

func filterQuery(filters []Filter) url.Values {
	q := url.Values{}
	for _, f := range filters {
		q.Add(f.Column, f.Operator+"."+f.Value)
	}
	return q
}

// SelectSingle reads exactly one row of table into out. Zero matching rows
// produce an APIError with code PGRST116 (see IsNoRows).
func (c *Client) SelectSingle(ctx context.Context, token, table string, out interface{}, filters ...Filter) error {
	q := filterQuery(filters)
	q.Set("select", "*")

	return c.do(ctx, request{
		operation: "rows_select_" + table,
		method:    http.MethodGet,
		path:      restPrefix + "/" + table,
		query:     q,
		token:     token,
		headers: map[string]string{
			constants.HeaderAccept: constants.ContentTypePGRSTObject,
		},
	}, out)
}

// Insert adds row to table. When out is non-nil the inserted row is decoded into it.
func (c *Client) Insert(ctx context.Context, token, table string, row interface{}, out interface{}) error {
	headers := map[string]string{constants.HeaderPrefer: constants.PreferReturnMinimal}
	if out != nil {
		headers[constants.HeaderPrefer] = constants.PreferReturnRepresentation
		headers[constants.HeaderAccept] = constants.ContentTypePGRSTObject
	}

	return c.do(ctx, request{
		operation: "rows_insert_" + table,
		method:    http.MethodPost,
		path:      restPrefix + "/" + table,
		token:     token,
		headers:   headers,
		body:      row,
	}, out)
}

// Update writes values to the rows of table matching filters. Matching no rows
// is not an error.
func (c *Client) Update(ctx context.Context, token, table string, values map[string]interface{}, filters ...Filter) error {
	return c.do(ctx, request{
		operation: "rows_update_" + table,
		method:    http.MethodPatch,
		path:      restPrefix + "/" + table,
		query:     filterQuery(filters),
		token:     token,
		headers: map[string]string{
			constants.HeaderPrefer: constants.PreferReturnMinimal,
		},
		body: values,
	}, nil)
}
