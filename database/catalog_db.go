package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// sort keys accepted by the public catalog listing
const (
	SortNameAsc  = "name_asc"
	SortNameDesc = "name_desc"
	SortNewest   = "newest"
	SortOldest   = "oldest"
)

const DefaultSort = SortNewest

const DefaultPerPage = 12

var sortClauses = map[string]string{
	SortNameAsc:  "figures.name ASC",
	SortNameDesc: "figures.name DESC",
	SortNewest:   "figures.created_at DESC",
	SortOldest:   "figures.created_at ASC",
}

// IsValidSort checks if a string is an accepted catalog sort key
func IsValidSort(key string) bool {
	_, ok := sortClauses[key]
	return ok
}

// CatalogFilter narrows and orders the public figure listing.
type CatalogFilter struct {
	Search  string
	Group   string
	Sort    string
	Page    int
	PerPage int
}

// CatalogEntry is the read-side row backing one card on the listing page.
type CatalogEntry struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	GroupLabel   string    `json:"group_label"`
	MainImageURL *string   `json:"main_image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (f CatalogFilter) perPage() int {
	if f.PerPage <= 0 {
		return DefaultPerPage
	}
	return f.PerPage
}

func (f CatalogFilter) page() int {
	if f.Page < 1 {
		return 1
	}
	return f.Page
}

func buildCatalogQuery(filter CatalogFilter) (string, []interface{}, error) {
	qb := psql.Select("figures.id", "figures.name", "figures.slug", "figures.group_label",
		"images.url", "figures.created_at").
		From("figures").
		LeftJoin("images ON images.id = figures.main_image_id")

	if search := strings.TrimSpace(filter.Search); search != "" {
		qb = qb.Where(sq.Like{"figures.name": "%" + search + "%"})
	}
	if filter.Group != "" {
		qb = qb.Where(sq.Eq{"figures.group_label": filter.Group})
	}

	clause, ok := sortClauses[filter.Sort]
	if !ok {
		clause = sortClauses[DefaultSort]
	}
	qb = qb.OrderBy(clause)

	perPage := filter.perPage()
	qb = qb.Limit(uint64(perPage)).Offset(uint64((filter.page() - 1) * perPage))

	return qb.ToSql()
}

// ListCatalog returns one page of the public figure listing.
func ListCatalog(db *sql.DB, filter CatalogFilter) ([]CatalogEntry, error) {
	sqlStr, args, err := buildCatalogQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ListCatalog: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ListCatalog query: %w", err)
	}
	defer rows.Close()

	entries := []CatalogEntry{}
	for rows.Next() {
		var e CatalogEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Slug, &e.GroupLabel, &e.MainImageURL, &e.CreatedAt); err != nil {
			log.Printf("Error scanning catalog row: %v", err)
			continue
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return entries, fmt.Errorf("error iterating catalog rows: %w", err)
	}
	return entries, nil
}

// CountCatalog returns the total number of figures matching the filter,
// ignoring its paging.
func CountCatalog(db *sql.DB, filter CatalogFilter) (int, error) {
	qb := psql.Select("COUNT(*)").From("figures")
	if search := strings.TrimSpace(filter.Search); search != "" {
		qb = qb.Where(sq.Like{"figures.name": "%" + search + "%"})
	}
	if filter.Group != "" {
		qb = qb.Where(sq.Eq{"figures.group_label": filter.Group})
	}

	sqlStr, args, err := qb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build SQL for CountCatalog: %w", err)
	}

	var total int
	if err := db.QueryRow(sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to execute CountCatalog query: %w", err)
	}
	return total, nil
}

// ListGroups returns the distinct group labels in use, for the filter dropdown.
func ListGroups(db *sql.DB) ([]string, error) {
	sqlStr, args, err := psql.Select("DISTINCT group_label").
		From("figures").
		OrderBy("group_label ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ListGroups: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ListGroups query: %w", err)
	}
	defer rows.Close()

	groups := []string{}
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return groups, fmt.Errorf("failed to scan group row: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
