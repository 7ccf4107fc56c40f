package pgdb

import (
	"strings"

	"gig-marketplace-api/internal/entity"

	"github.com/Masterminds/squirrel"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// gigFilterCondition turns the optional listing predicates into a single
// condition. Price bounds match gigs whose range overlaps the requested one.
func gigFilterCondition(f *entity.GigFilter) squirrel.And {
	cond := squirrel.And{}
	if f == nil {
		return cond
	}

	if f.PriceMin != nil {
		cond = append(cond, squirrel.GtOrEq{"gig.price_max": *f.PriceMin})
	}
	if f.PriceMax != nil {
		cond = append(cond, squirrel.LtOrEq{"gig.price_min": *f.PriceMax})
	}

	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + likeEscaper.Replace(search) + "%"
		cond = append(cond, squirrel.Or{
			squirrel.ILike{"gig.title": pattern},
			squirrel.ILike{"gig.description": pattern},
			squirrel.Expr("? = ANY(gig.keywords)", strings.ToLower(search)),
		})
	}

	if len(f.Tiers) > 0 {
		cond = append(cond, squirrel.Eq{"gig.tier": f.Tiers})
	}

	if f.StartFrom != nil {
		cond = append(cond, squirrel.GtOrEq{"gig.start_date": *f.StartFrom})
	}
	if f.EndTo != nil {
		cond = append(cond, squirrel.LtOrEq{"gig.end_date": *f.EndTo})
	}

	return cond
}
