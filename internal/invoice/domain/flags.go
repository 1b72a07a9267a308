package domain

// Flag labels and short codes of the legacy accounting system, in fixed
// precedence order: partially paid, credit note, proforma, overpaid,
// overdue.
const (
	FlagPartiallyPaid      = "ČIASTOČNE UHRADENÁ"
	FlagPartiallyPaidShort = "ČU"
	FlagCreditNote         = "DOBROPIS"
	FlagCreditNoteShort    = "DP"
	FlagProforma           = "PROFORMA FAKTÚRA"
	FlagProformaShort      = "PF"
	FlagOverpaid           = "PREPLATOK"
	FlagOverpaidShort      = "PP"
	FlagOverdue            = "PO SPLATNOSTI"
	FlagOverdueShort       = "PS"
)
