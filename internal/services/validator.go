package services

import "github.com/votely/votely/internal/models"

// ValidateSelections checks a submitted selection set against the poll's
// choice rule and returns the deduplicated set. Validation is pure and runs
// before any mutation; a rejected submission leaves no trace in storage.
func ValidateSelections(poll *models.Poll, selections []string) ([]string, error) {
	// Selections are a set; a double-tapped option collapses to one
	seen := make(map[string]bool, len(selections))
	deduped := make([]string, 0, len(selections))
	for _, optionID := range selections {
		if seen[optionID] {
			continue
		}
		seen[optionID] = true
		if !poll.HasOption(optionID) {
			return nil, ErrUnknownOption
		}
		deduped = append(deduped, optionID)
	}

	switch poll.ChoiceRule {
	case models.ChoiceSingle:
		if len(deduped) != 1 {
			return nil, ErrInvalidSelectionCount
		}
	case models.ChoiceMultiple:
		if len(deduped) < 1 || len(deduped) > poll.MaxSelections {
			return nil, ErrInvalidSelectionCount
		}
	default:
		return nil, ErrInvalidSelectionCount
	}

	return deduped, nil
}
