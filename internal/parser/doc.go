// Package parser classifies the line-oriented output of Portage's repoman
// QA scanner and groups its diagnostics by package, file and message code
// into an ordered, sortable tree.
package parser
