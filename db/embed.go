// Package db provides the embedded product catalog data.
package db

import _ "embed"

// Catalog contains the full product catalog as JSON. It is loaded once at
// startup and never mutated.
//
//go:embed catalog/products.json
var Catalog []byte
