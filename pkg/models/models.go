// Package models holds the storefront API's wire types. Field names follow
// the API's camelCase JSON; ids arrive as _id.
package models

import "github.com/shopspring/decimal"

func init() {
	// the API sends and expects money as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}
