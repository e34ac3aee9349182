package quote

// Disposition is the audit fate of a submitted quote. Every submission is
// retained; only valid rows ever reach scoring.
type Disposition string

const (
	DispositionValid      Disposition = "valid"
	DispositionRejected   Disposition = "rejected"
	DispositionSuperseded Disposition = "superseded"
	DispositionLate       Disposition = "late"
)

// Record is a quote plus its audit disposition.
type Record struct {
	Quote         VendorQuote
	Disposition   Disposition
	RejectionCode RejectionCode
}
