package database

import (
	"strings"
	"testing"
)

func TestBuildCatalogQuery(t *testing.T) {
	tests := []struct {
		name        string
		filter      CatalogFilter
		wantParts   []string
		wantArgs    int
		rejectParts []string
	}{
		{
			name:      "defaults",
			filter:    CatalogFilter{},
			wantParts: []string{"ORDER BY figures.created_at DESC", "LIMIT 12", "OFFSET 0"},
			wantArgs:  0,
		},
		{
			name:      "search adds LIKE",
			filter:    CatalogFilter{Search: "cork"},
			wantParts: []string{"figures.name LIKE ?"},
			wantArgs:  1,
		},
		{
			name:      "group filter adds equality",
			filter:    CatalogFilter{Group: "rotations"},
			wantParts: []string{"figures.group_label = ?"},
			wantArgs:  1,
		},
		{
			name:      "search and group combine",
			filter:    CatalogFilter{Search: "720", Group: "rotations"},
			wantParts: []string{"figures.name LIKE ?", "figures.group_label = ?"},
			wantArgs:  2,
		},
		{
			name:      "explicit sort honored",
			filter:    CatalogFilter{Sort: SortNameAsc},
			wantParts: []string{"ORDER BY figures.name ASC"},
			wantArgs:  0,
		},
		{
			name:        "unknown sort falls back to default",
			filter:      CatalogFilter{Sort: "name; DROP TABLE figures"},
			wantParts:   []string{"ORDER BY figures.created_at DESC"},
			rejectParts: []string{"DROP TABLE"},
			wantArgs:    0,
		},
		{
			name:      "paging offsets",
			filter:    CatalogFilter{Page: 3, PerPage: 10},
			wantParts: []string{"LIMIT 10", "OFFSET 20"},
			wantArgs:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sqlStr, args, err := buildCatalogQuery(tt.filter)
			if err != nil {
				t.Fatalf("buildCatalogQuery() error = %v", err)
			}
			for _, part := range tt.wantParts {
				if !strings.Contains(sqlStr, part) {
					t.Errorf("query %q missing %q", sqlStr, part)
				}
			}
			for _, part := range tt.rejectParts {
				if strings.Contains(sqlStr, part) {
					t.Errorf("query %q must not contain %q", sqlStr, part)
				}
			}
			if len(args) != tt.wantArgs {
				t.Errorf("got %d args, want %d", len(args), tt.wantArgs)
			}
		})
	}
}

func TestIsValidSort(t *testing.T) {
	for _, key := range []string{SortNameAsc, SortNameDesc, SortNewest, SortOldest} {
		if !IsValidSort(key) {
			t.Errorf("IsValidSort(%q) = false, want true", key)
		}
	}
	if IsValidSort("likes_desc") {
		t.Error("unknown sort key accepted")
	}
}
