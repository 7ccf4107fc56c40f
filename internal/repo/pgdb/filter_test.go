package pgdb

import (
	"testing"
	"time"

	"gig-marketplace-api/internal/entity"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toSql(t *testing.T, f *entity.GigFilter) (string, []interface{}) {
	t.Helper()

	query, args, err := squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Dollar).
		Select("gig.id").
		From("gig").
		Where(gigFilterCondition(f)).
		ToSql()
	require.NoError(t, err)

	return query, args
}

func TestGigFilterConditionEmpty(t *testing.T) {
	_, args := toSql(t, nil)
	assert.Empty(t, args)

	_, args = toSql(t, &entity.GigFilter{Search: "   "})
	assert.Empty(t, args)
}

func TestGigFilterConditionAllPredicates(t *testing.T) {
	min := decimal.NewFromInt(50)
	max := decimal.NewFromInt(300)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	query, args := toSql(t, &entity.GigFilter{
		PriceMin:  &min,
		PriceMax:  &max,
		Search:    "Logo",
		Tiers:     []string{"basic", "premium"},
		StartFrom: &from,
		EndTo:     &to,
	})

	assert.Contains(t, query, "gig.price_max >= $1")
	assert.Contains(t, query, "gig.price_min <= $2")
	assert.Contains(t, query, "gig.title ILIKE $3")
	assert.Contains(t, query, "gig.description ILIKE $4")
	assert.Contains(t, query, "$5 = ANY(gig.keywords)")
	assert.Contains(t, query, "gig.tier IN ($6,$7)")
	assert.Contains(t, query, "gig.start_date >= $8")
	assert.Contains(t, query, "gig.end_date <= $9")

	require.Len(t, args, 9)
	assert.Equal(t, "%Logo%", args[2])
	assert.Equal(t, "logo", args[4])
	assert.Equal(t, "basic", args[5])
	assert.Equal(t, from, args[7])
}

func TestGigFilterConditionEscapesLikeWildcards(t *testing.T) {
	_, args := toSql(t, &entity.GigFilter{Search: "100%_off"})

	require.NotEmpty(t, args)
	assert.Equal(t, `%100\%\_off%`, args[0])
}
