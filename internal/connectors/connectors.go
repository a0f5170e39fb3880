package connectors

import "rfpflow/internal"

// MailConnector abstracts the mailbox providers RFPs arrive through.
type MailConnector interface {
	FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error)
}
