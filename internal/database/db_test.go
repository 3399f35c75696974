package database

import (
	"regexp"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/model"
)

func TestDSN(t *testing.T) {
	dsn := DSN(Options{User: "hotel", Pass: "p@ss", Host: "db", Port: "3306", Name: "hotel"})
	c, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "hotel", c.User)
	assert.Equal(t, "p@ss", c.Passwd)
	assert.Equal(t, "db:3306", c.Addr)
	assert.Equal(t, "hotel", c.DBName)
	assert.True(t, c.ParseTime)
	assert.Equal(t, time.UTC, c.Loc)
}

func TestSeedRooms(t *testing.T) {
	rooms := SeedRooms()
	require.Len(t, rooms, 10)
	seen := map[string]bool{}
	for _, r := range rooms {
		assert.False(t, seen[r.Number], "duplicate room %s", r.Number)
		seen[r.Number] = true
		assert.Positive(t, r.RateCents)
		assert.Positive(t, r.Capacity)
		assert.True(t, r.Available)
		_, err := model.ParseRoomType(string(r.Type))
		assert.NoError(t, err)
	}
}

func TestSchemaKeepsMicroseconds(t *testing.T) {
	plain := regexp.MustCompile(`DATETIME(\s|,)`)
	for i, stmt := range schema {
		assert.False(t, plain.MatchString(stmt), "statement %d has a second-precision DATETIME", i+1)
	}
}
