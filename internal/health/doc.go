// Package health extracts district-level diarrhoea inpatient case counts
// from the per-state HMIS Excel workbooks. The workbooks carry a two-level
// header (month groups over subtotal columns); the processor flattens it,
// keeps the diarrhoea inpatient indicator rows, and reshapes the monthly
// totals into one long-format district-month table spanning the financial
// year.
package health
