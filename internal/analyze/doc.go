// Package analyze joins the cleaned FHTC coverage data with the HMIS
// diarrhoea case table into a district-month panel and estimates, per
// state, the effect of tap-water coverage on log inpatient cases using a
// district fixed-effects regression.
package analyze
