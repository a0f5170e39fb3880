package connectors

import (
	"rfpflow/internal/storage"
)

// FetchService pulls a mailbox through a connector and hands every message
// to the store. Fetching never processes: the pipeline picks up stored
// messages separately.
type FetchService struct {
	connector MailConnector
	store     *MailStoreService
}

// FetchResult splits a fetch batch into newly stored messages and
// re-deliveries of messages the store had already seen.
type FetchResult struct {
	Fetched    int
	Stored     int
	Duplicates int
}

func NewFetchService(db *storage.DB, rawMailDir string, connector MailConnector) *FetchService {
	return &FetchService{
		connector: connector,
		store:     NewMailStoreService(db, rawMailDir),
	}
}

func (s *FetchService) FetchAndStore(label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(label, max)
	if err != nil {
		return FetchResult{}, err
	}

	result := FetchResult{Fetched: len(messages)}
	for _, msg := range messages {
		_, isNew, err := s.store.Store(msg)
		if err != nil {
			return FetchResult{}, err
		}
		if isNew {
			result.Stored++
		} else {
			result.Duplicates++
		}
	}

	return result, nil
}
