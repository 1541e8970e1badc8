// Package service implements the device lookup and inventory workflows.
//
// Services coordinate between the command line and the adapters, which are reached only
// through the interfaces in interfaces.go so every workflow can be tested with mocks.
//
// # Services
//
// Finder reads the requested sources, folds their observations into a domain.Table,
// optionally probes the devices through an Enricher and applies a filter.
//
// Enricher probes every device that lacks architecture or firmware and has a known port.
// Probes run concurrently, each with its own timeout, and results are merged one at a time
// once every probe has finished.
//
// InventoryService manages the alias database, imports and returns loans, and selects the
// active device.
package service
