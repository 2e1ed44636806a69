package catalog

import (
	"testing"

	"certcycle/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, database.Migrate(db), "failed to migrate test database")
	return db
}

func TestGetOrCreateStandardKnownCode(t *testing.T) {
	cat := New(setupTestDB(t))

	s, err := cat.GetOrCreateStandard("9001")
	require.NoError(t, err)
	assert.Equal(t, "ISO 9001", s.Name)
	assert.True(t, s.Active)
}

func TestGetOrCreateStandardUnknownCode(t *testing.T) {
	cat := New(setupTestDB(t))

	s, err := cat.GetOrCreateStandard("13485")
	require.NoError(t, err)
	assert.Equal(t, "Standard 13485", s.Name)
}

func TestGetOrCreateStandardNoDuplicates(t *testing.T) {
	cat := New(setupTestDB(t))

	first, err := cat.GetOrCreateStandard("14001")
	require.NoError(t, err)
	second, err := cat.GetOrCreateStandard("14001")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	standards, err := cat.ListStandards()
	require.NoError(t, err)
	assert.Len(t, standards, 1)
}

func TestStandardByCodeNotFound(t *testing.T) {
	cat := New(setupTestDB(t))

	_, err := cat.StandardByCode("9001")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetOrCreateCode(t *testing.T) {
	cat := New(setupTestDB(t))

	c1, err := cat.GetOrCreateCode("03a")
	require.NoError(t, err)
	c2, err := cat.GetOrCreateCode("03a")
	require.NoError(t, err)
	assert.Equal(t, c1.ID, c2.ID)

	found, err := cat.CodeByCode("03a")
	require.NoError(t, err)
	assert.Equal(t, c1.ID, found.ID)
}
