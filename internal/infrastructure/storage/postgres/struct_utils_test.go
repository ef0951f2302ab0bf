package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
)

type mockCatalog struct {
	entity.BaseCatalog
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`

	// Untagged and ignored fields must not leak into SQL.
	Runtime string `db:"-"`
	Scratch string
}

type mockCatalogWithMoney struct {
	mockCatalog
	OpeningBalance types.MinorUnits `db:"opening_balance" json:"openingBalance"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	expected := []string{"id", "deletion_mark", "version", "attributes", "code", "name"}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}

	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "runtime")
	assert.NotContains(t, cols, "scratch")
}

func TestExtractDBColumns_NestedEmbedding(t *testing.T) {
	cols := ExtractDBColumns[mockCatalogWithMoney]()

	assert.Contains(t, cols, "id")
	assert.Contains(t, cols, "code")
	assert.Contains(t, cols, "opening_balance")
}

func TestStructToMap(t *testing.T) {
	cat := mockCatalog{
		BaseCatalog: entity.BaseCatalog{
			BaseEntity: entity.BaseEntity{
				ID:           id.New(),
				DeletionMark: true,
				Version:      5,
			},
		},
		Code:    "CU-001",
		Name:    "Ravi Stores",
		Runtime: "not persisted",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "CU-001", m["code"])
	assert.Equal(t, "Ravi Stores", m["name"])

	_, hasRuntime := m["-"]
	assert.False(t, hasRuntime)
	_, hasScratch := m["Scratch"]
	assert.False(t, hasScratch)
}

func TestStructToMap_PointerAndNonStruct(t *testing.T) {
	cat := &mockCatalog{Code: "CU-002"}
	m := StructToMap(cat)
	assert.Equal(t, "CU-002", m["code"])

	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap("not a struct"))
}

func TestStructToMap_EmbeddedOverride(t *testing.T) {
	cat := mockCatalogWithMoney{
		mockCatalog:    mockCatalog{Code: "AC-001", Name: "A.R"},
		OpeningBalance: types.MinorUnits(220000),
	}

	m := StructToMap(cat)

	assert.Equal(t, "AC-001", m["code"])
	assert.Equal(t, types.MinorUnits(220000), m["opening_balance"])
}
