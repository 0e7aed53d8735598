// Package capability models the print capabilities of a cloud print
// destination.
//
// A CloudCapabilities value aggregates up to four capabilities: collate,
// color, copies and duplex. Each capability carries the identifiers of its
// two options and which one is selected by default. Capability IDs depend on
// the document format the printer accepts (HP, PPD, XPS) and are looked up in
// static tables; a capability without an entry for a format does not apply
// to it.
//
// Capabilities are built once, usually by Parse from a capability descriptor
// document, and are read-only afterwards.
package capability
