// Package cli is the admin command line for the plate ledger.
//
// Every command is one gRPC call:
//
//	ping
//	sighting [--observer N] PLATE
//	roster -f FILE [--actor N]        (FILE is CSV, plate in the first column; "-" reads stdin)
//	archive [--actor N] PLATE
//	report --kind KIND [--page N]
//	history [--audit] PLATE
//
// Results are printed as aligned text.
package cli
