// Package jobs provides the paged dataset query provider and the NOC and
// location lookups over PostgreSQL.
//
// Two datasets exist with different schemas: lmia (Labour Market Impact
// Assessment postings) and hot_leads (trending postings). Column names are
// resolved per dataset here so every other package sees one record shape.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lmia/compare-service/internal/suggest"
)

// Dataset names accepted by Query.
const (
	DatasetLMIA     = "lmia"
	DatasetHotLeads = "hot_leads"
)

// datasetTables maps a dataset to its table and its (title, employer,
// region) column names. Only columns listed here are ever interpolated
// into SQL; user input never is.
var datasetTables = map[string]struct {
	table    string
	title    string
	employer string
	region   string
}{
	DatasetLMIA:     {table: "lmia_records", title: "job_title", employer: "operating_name", region: "state"},
	DatasetHotLeads: {table: "hot_leads_records", title: "occupation_title", employer: "employer", region: "territory"},
}

// queryableFields are the per-dataset columns a free-text query or filter
// may target.
var queryableFields = map[string]map[string]bool{
	DatasetLMIA:     {"job_title": true, "operating_name": true, "city": true, "state": true, "noc_code": true},
	DatasetHotLeads: {"occupation_title": true, "employer": true, "city": true, "territory": true, "noc_code": true},
}

// JobRecord is a dataset row normalised to one shape.
type JobRecord struct {
	RecordID string `json:"record_id"`
	Dataset  string `json:"dataset"`
	Title    string `json:"title"`
	Employer string `json:"employer"`
	City     string `json:"city"`
	Region   string `json:"region"`
	NOCCode  string `json:"noc_code"`
}

// QueryRequest describes one paged dataset query.
type QueryRequest struct {
	Dataset string            // "lmia" or "hot_leads"
	Query   string            // free text, matched with ILIKE against Field
	Field   string            // column Query targets; defaults to the title column
	Filters map[string]string // exact-match column filters
	Limit   int               // defaults to 25, capped at 100
	Offset  int
}

// QueryResult is one page of records plus the total match count.
type QueryResult struct {
	Records []JobRecord `json:"data"`
	Count   int         `json:"count"`
}

// NOCProfile is the occupational-classification profile for one NOC code.
type NOCProfile struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tier        int    `json:"tier"`
}

// CityProvince pairs a city with its province.
type CityProvince struct {
	City     string `json:"city"`
	Province string `json:"province"`
}

// Service runs all dataset and lookup queries.
type Service struct {
	pool *pgxpool.Pool
}

// NewService returns a configured Service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// ─── Dataset queries ─────────────────────────────────────────────────────────

// Query returns one page of dataset records matching the request, plus the
// total count across all pages.
func (s *Service) Query(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	meta, ok := datasetTables[req.Dataset]
	if !ok {
		return nil, fmt.Errorf("unknown dataset %q", req.Dataset)
	}

	field := req.Field
	if field == "" {
		field = meta.title
	}
	if !queryableFields[req.Dataset][field] {
		return nil, fmt.Errorf("field %q is not queryable on dataset %s", field, req.Dataset)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 25
	}
	if limit > 100 {
		limit = 100
	}

	var (
		where []string
		args  []any
	)
	if req.Query != "" {
		args = append(args, "%"+req.Query+"%")
		where = append(where, fmt.Sprintf("%s ILIKE $%d", field, len(args)))
	}
	for col, val := range req.Filters {
		if !queryableFields[req.Dataset][col] {
			return nil, fmt.Errorf("filter column %q is not queryable on dataset %s", col, req.Dataset)
		}
		args = append(args, val)
		where = append(where, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	sql := fmt.Sprintf(
		`SELECT record_id, %s, %s, city, %s, noc_code, COUNT(*) OVER() AS total
		 FROM %s`,
		meta.title, meta.employer, meta.region, meta.table,
	)
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, req.Offset)
	sql += fmt.Sprintf(" ORDER BY record_id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", req.Dataset, err)
	}
	defer rows.Close()

	result := &QueryResult{Records: make([]JobRecord, 0)}
	for rows.Next() {
		var r JobRecord
		if err := rows.Scan(&r.RecordID, &r.Title, &r.Employer, &r.City, &r.Region, &r.NOCCode, &result.Count); err != nil {
			return nil, fmt.Errorf("query %s scan: %w", req.Dataset, err)
		}
		r.Dataset = req.Dataset
		result.Records = append(result.Records, r)
	}
	return result, rows.Err()
}

// SavedJobs returns the user's saved postings from both datasets, resolving
// the dataset-specific columns so suggest can treat them uniformly.
func (s *Service) SavedJobs(ctx context.Context, userID string) ([]suggest.SavedJob, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT sj.record_id, sj.dataset,
		        COALESCE(l.job_title, ''), COALESCE(h.occupation_title, ''),
		        COALESCE(l.operating_name, ''), COALESCE(h.employer, ''),
		        COALESCE(l.city, h.city, ''),
		        COALESCE(l.state, ''), COALESCE(h.territory, '')
		 FROM saved_jobs sj
		 LEFT JOIN lmia_records l
		        ON sj.dataset = 'lmia' AND l.record_id = sj.record_id
		 LEFT JOIN hot_leads_records h
		        ON sj.dataset = 'hot_leads' AND h.record_id = sj.record_id
		 WHERE sj.user_id = $1
		 ORDER BY sj.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("savedJobs query: %w", err)
	}
	defer rows.Close()

	var saved []suggest.SavedJob
	for rows.Next() {
		var j suggest.SavedJob
		if err := rows.Scan(
			&j.RecordID, &j.Dataset,
			&j.JobTitle, &j.OccupationTitle,
			&j.OperatingName, &j.Employer,
			&j.City, &j.State, &j.Territory,
		); err != nil {
			return nil, fmt.Errorf("savedJobs scan: %w", err)
		}
		saved = append(saved, j)
	}
	return saved, rows.Err()
}

// ─── NOC lookups ─────────────────────────────────────────────────────────────

// TierByNOC returns the tier for a NOC code, or nil when the code is
// unknown.
func (s *Service) TierByNOC(ctx context.Context, code string) (*int, error) {
	var tier int
	err := s.pool.QueryRow(ctx,
		`SELECT tier FROM noc_profiles WHERE code = $1`, code,
	).Scan(&tier)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tierByNOC: %w", err)
	}
	return &tier, nil
}

// ProfileByNOC returns the full NOC profile for a code.
func (s *Service) ProfileByNOC(ctx context.Context, code string) (*NOCProfile, error) {
	var p NOCProfile
	err := s.pool.QueryRow(ctx,
		`SELECT code, title, description, tier FROM noc_profiles WHERE code = $1`, code,
	).Scan(&p.Code, &p.Title, &p.Description, &p.Tier)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("NOC profile %s not found", code)
	}
	if err != nil {
		return nil, fmt.Errorf("profileByNOC: %w", err)
	}
	return &p, nil
}

// ─── Location lookups ────────────────────────────────────────────────────────

// Provinces returns every province with at least one known city.
func (s *Service) Provinces(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT province FROM cities ORDER BY province`)
	if err != nil {
		return nil, fmt.Errorf("provinces query: %w", err)
	}
	defer rows.Close()

	var provinces []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("provinces scan: %w", err)
		}
		provinces = append(provinces, p)
	}
	return provinces, rows.Err()
}

// CitiesForProvinces returns every city in the given provinces.
func (s *Service) CitiesForProvinces(ctx context.Context, provinces []string) ([]CityProvince, error) {
	if len(provinces) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT city, province FROM cities WHERE province = ANY($1) ORDER BY city`,
		provinces,
	)
	if err != nil {
		return nil, fmt.Errorf("cities query: %w", err)
	}
	defer rows.Close()

	var cities []CityProvince
	for rows.Next() {
		var c CityProvince
		if err := rows.Scan(&c.City, &c.Province); err != nil {
			return nil, fmt.Errorf("cities scan: %w", err)
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}
