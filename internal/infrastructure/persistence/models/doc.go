// Package models contains GORM-specific persistence models that map to the
// storefront tables read by the OTO integration. These models are separate
// from domain entities to keep the domain layer free from ORM concerns.
//
// Structure:
//   - base.go: shared column types (JSONMap)
//   - order.go: orders, lines, addresses, payments, users and fulfillments
//   - catalog.go: products, variants and product images
//   - site.go: storefront sites
package models
