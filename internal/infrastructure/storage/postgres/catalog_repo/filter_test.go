package catalog_repo

import (
	"strings"
	"testing"

	"tradebook/internal/domain/filter"
)

func newTestRepo() *BaseCatalogRepo[any] {
	return NewBaseCatalogRepo[any](nil, "test_table", []string{"id", "code", "name", "area"}, func() any { return nil })
}

func TestApplyAdvancedFilters_Operators(t *testing.T) {
	repo := newTestRepo()

	tests := []struct {
		name     string
		item     filter.Item
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "Equal",
			item:     filter.Item{Field: "area", Operator: filter.Equal, Value: "Market Road"},
			wantSQL:  "SELECT id, code, name, area FROM test_table WHERE area = $1",
			wantArgs: []any{"Market Road"},
		},
		{
			name:     "NotEqual",
			item:     filter.Item{Field: "area", Operator: filter.NotEqual, Value: "Market Road"},
			wantSQL:  "SELECT id, code, name, area FROM test_table WHERE area <> $1",
			wantArgs: []any{"Market Road"},
		},
		{
			name:     "LessOrEqual",
			item:     filter.Item{Field: "code", Operator: filter.LessOrEqual, Value: "CU-100"},
			wantSQL:  "SELECT id, code, name, area FROM test_table WHERE code <= $1",
			wantArgs: []any{"CU-100"},
		},
		{
			name:     "GreaterOrEqual",
			item:     filter.Item{Field: "code", Operator: filter.GreaterOrEqual, Value: "CU-100"},
			wantSQL:  "SELECT id, code, name, area FROM test_table WHERE code >= $1",
			wantArgs: []any{"CU-100"},
		},
		{
			name:     "InList",
			item:     filter.Item{Field: "code", Operator: filter.InList, Value: []any{"CU-001", "CU-002"}},
			wantSQL:  "SELECT id, code, name, area FROM test_table WHERE code IN ($1,$2)",
			wantArgs: []any{"CU-001", "CU-002"},
		},
		{
			name:     "NotInList",
			item:     filter.Item{Field: "code", Operator: filter.NotInList, Value: []any{"CU-001", "CU-002"}},
			wantSQL:  "SELECT id, code, name, area FROM test_table WHERE code NOT IN ($1,$2)",
			wantArgs: []any{"CU-001", "CU-002"},
		},
		{
			name:     "IsNull",
			item:     filter.Item{Field: "parent_id", Operator: filter.IsNull},
			wantSQL:  "SELECT id, code, name, area FROM test_table WHERE parent_id IS NULL",
			wantArgs: nil,
		},
		{
			name:     "IsNotNull",
			item:     filter.Item{Field: "parent_id", Operator: filter.IsNotNull},
			wantSQL:  "SELECT id, code, name, area FROM test_table WHERE parent_id IS NOT NULL",
			wantArgs: nil,
		},
		{
			name:     "Contains",
			item:     filter.Item{Field: "name", Operator: filter.Contains, Value: "Ravi"},
			wantSQL:  "SELECT id, code, name, area FROM test_table WHERE name ILIKE $1",
			wantArgs: []any{"%Ravi%"},
		},
		{
			name:     "NotContains",
			item:     filter.Item{Field: "name", Operator: filter.NotContains, Value: "Ravi"},
			wantSQL:  "SELECT id, code, name, area FROM test_table WHERE name NOT ILIKE $1",
			wantArgs: []any{"%Ravi%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := repo.applyAdvancedFilters(repo.baseSelect(), []filter.Item{tt.item})
			if err != nil {
				t.Fatalf("applyAdvancedFilters failed: %v", err)
			}

			sql, args, err := q.ToSql()
			if err != nil {
				t.Fatalf("ToSql failed: %v", err)
			}

			if sql != tt.wantSQL {
				t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", tt.wantSQL, sql)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args count mismatch\nwant: %d\ngot:  %d", len(tt.wantArgs), len(args))
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("arg %d mismatch\nwant: %v\ngot:  %v", i, tt.wantArgs[i], args[i])
				}
			}
		})
	}
}

func TestApplyAdvancedFilters_RejectsUnknownColumn(t *testing.T) {
	repo := newTestRepo()

	_, err := repo.applyAdvancedFilters(repo.baseSelect(), []filter.Item{
		{Field: "password_hash; DROP TABLE test_table", Operator: filter.Equal, Value: "x"},
	})
	if err == nil {
		t.Fatal("expected error for column outside the whitelist")
	}
}

func TestApplyAdvancedFilters_CombinesWithAnd(t *testing.T) {
	repo := newTestRepo()

	q, err := repo.applyAdvancedFilters(repo.baseSelect(), []filter.Item{
		{Field: "area", Operator: filter.Equal, Value: "Market Road"},
		{Field: "name", Operator: filter.Contains, Value: "Stores"},
	})
	if err != nil {
		t.Fatalf("applyAdvancedFilters failed: %v", err)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	wantSQL := "SELECT id, code, name, area FROM test_table WHERE area = $1 AND name ILIKE $2"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
}

func TestApplyAdvancedFilters_Hierarchy(t *testing.T) {
	repo := newTestRepo()

	q, err := repo.applyAdvancedFilters(repo.baseSelect(), []filter.Item{
		{Field: "parent_id", Operator: filter.InHierarchy, Value: "some-group-id"},
	})
	if err != nil {
		t.Fatalf("applyAdvancedFilters failed: %v", err)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	if !strings.Contains(sql, "WITH RECURSIVE hierarchy") {
		t.Errorf("expected recursive CTE in SQL, got: %s", sql)
	}
	if !strings.Contains(sql, "id IN (") {
		t.Errorf("expected id IN subquery, got: %s", sql)
	}
	if len(args) != 1 || args[0] != "some-group-id" {
		t.Errorf("expected root id arg, got: %v", args)
	}
}

func TestParseOrderBy(t *testing.T) {
	repo := newTestRepo()

	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"", "name ASC", false},
		{"code", "code ASC", false},
		{"-created_at", "created_at DESC", false},
		{"+name", "name ASC", false},
		{"secret_col", "", true},
		{"-", "", true},
	}

	for _, tt := range tests {
		got, err := repo.parseOrderBy(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("orderBy %q: expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("orderBy %q: unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("orderBy %q: want %q, got %q", tt.input, tt.want, got)
		}
	}
}
