package billing

// ProjectJobStatus derives a job's status from its linked invoice. The
// projection is pure and idempotent; applying it twice with the same
// invoice changes nothing.
//
// A cancelled job keeps its status no matter what the invoice does, and
// a job with no invoice (or whose invoice was voided and detached) is
// left alone.
func ProjectJobStatus(job *Job, invoice *Invoice) JobStatus {
	if job.Status == JobStatusCancelled {
		return JobStatusCancelled
	}
	if invoice == nil || job.InvoiceID == nil || *job.InvoiceID != invoice.ID {
		return job.Status
	}

	switch invoice.Status {
	case InvoiceStatusDraft, InvoiceStatusSent:
		return JobStatusInvoiced
	case InvoiceStatusPartiallyPaid:
		return JobStatusPartiallyPaid
	case InvoiceStatusPaid:
		return JobStatusCleared
	case InvoiceStatusVoid:
		// Void is handled by DetachInvoice, not by projection.
		return job.Status
	default:
		return job.Status
	}
}
