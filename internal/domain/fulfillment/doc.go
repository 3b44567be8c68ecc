// Package fulfillment contains the read model of orders and their shipment units
// as owned by the host commerce platform.
//
// Key concepts:
//   - Order: the purchase, with money totals, customer data, lines and payments
//   - Fulfillment: one shipment unit of exactly one order
//   - Repository: port used by the OTO integration to load a fulfillment graph
//
// Nothing in this package mutates the platform's records. The types are
// loaded, read and mapped into outbound logistics payloads.
package fulfillment
