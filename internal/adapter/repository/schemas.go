package repository

import "github.com/eslsoft/lexdrill/pkg/filterexpr"

var listWordsSchema = filterexpr.Schema{
	Fields: map[string]filterexpr.FieldRule{
		"term": {
			Kind: filterexpr.KindString,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpEQ: "Term",
				filterexpr.OpSW: "TermPrefix",
			},
		},
		"level": {
			Kind: filterexpr.KindString,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpEQ: "Level",
				filterexpr.OpIN: "Levels",
			},
		},
		"difficulty": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "Difficulty"},
		},
		"status": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "Status"},
		},
		"tag": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "Tag"},
		},
		"created_at": {
			Kind: filterexpr.KindTimestamp,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpGTE: "CreatedAfter",
				filterexpr.OpLTE: "CreatedBefore",
			},
		},
	},
	Order: filterexpr.OrderSchema{
		DefaultPrimary:     "created_at",
		DefaultPrimaryDesc: true,
		FallbackKey:        "id",
		Fields: map[string]filterexpr.OrderField{
			"created_at":     {Expr: "created_at", Nulls: "last"},
			"updated_at":     {Expr: "updated_at", Nulls: "last"},
			"term":           {Expr: "term", Nulls: "last"},
			"times_reviewed": {Expr: "times_reviewed", Nulls: "last"},
			"id":             {Expr: "id"},
		},
	},
}
