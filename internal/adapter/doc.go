// Package adapter connects the engine to the outside world.
//
// Each adapter supplies one source of observations or one way of contacting devices:
//
//   - ActiveStore reads and writes the active device (environment and file)
//   - LoanClient talks to the loan service (loans, catalog, cancellation)
//   - MDNSDiscoverer and NmapDiscoverer find devices on the LAN
//   - VapixProber asks a device for its model, serial, architecture and firmware
//   - SSHChecker verifies that a device accepts its credentials over SSH
//
// Devices serve self-signed certificates, so clients built here skip verification.
package adapter
