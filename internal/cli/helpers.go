package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/logwise-ai/logwise/internal/domain"
	"github.com/logwise-ai/logwise/internal/history"
)

// shortID trims a report UUID to its first group for display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// findReport resolves an exact ID or a unique ID prefix.
func findReport(store *history.Store, id string) (*domain.Report, error) {
	rep, err := store.Get(id)
	if err == nil {
		return rep, nil
	}
	if !errors.Is(err, domain.ErrReportNotFound) {
		return nil, err
	}

	all, err := store.List(0)
	if err != nil {
		return nil, err
	}
	var match *domain.Report
	for _, r := range all {
		if strings.HasPrefix(r.ID, id) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous report id %q", id)
			}
			match = r
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrReportNotFound, id)
	}
	return match, nil
}
