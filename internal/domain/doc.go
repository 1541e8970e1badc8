// Package domain defines the device observations and the fusion of them into one record per
// physical device.
//
// # Observations
//
// Each source describes a device differently: ActiveDevice is the device activated on this
// machine, InventoryDevice an alias database entry, DiscoveredDevice a LAN announcement,
// Loan a device on loan through the loan service gateway and CatalogDevice a device the loan
// service lists without lending it. Every observation derives a fingerprint from its host and
// effective HTTP port; observations with equal fingerprints describe the same device.
//
// # Fusion
//
// Table folds observations into Device records, one slot per source kind. Accessors resolve
// attributes in a fixed source precedence. Host, ports, architecture and firmware must agree
// across sources; a disagreement is reported as a ConflictError.
//
// # Gateway ports
//
// The loan service forwards three port bands to each device, offset by a suffix encoded in
// the device's external IPv4 address. GatewayPorts reproduces that convention.
package domain
