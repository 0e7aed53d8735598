// Package printer discovers IPP print destinations over mDNS and derives
// their capabilities.
//
// Printers advertise "_ipp._tcp" services with Bonjour printing TXT keys:
//
//	ty       make and model, used as display name
//	pdl      comma separated MIME types the printer accepts
//	Color    T if the printer prints color
//	Duplex   T if the printer prints two-sided
//	Copies   T if the printer makes copies itself
//	Collate  T if the printer collates copies
//
// The pdl list selects the document format (PPD for PostScript, HP for PCL,
// XPS for XPS). The boolean keys become a capability.CloudCapabilities using
// the capability IDs of that format.
//
// Browser aggregates addresses reported on several interfaces into one
// Destination per instance name. Store keeps the discovered destinations as a
// sorted, observable list.
package printer
