package services_test

import (
	"testing"

	"github.com/votely/votely/internal/models"
	"github.com/votely/votely/internal/services"
)

func testPoll(rule models.ChoiceRule, maxSelections int) *models.Poll {
	return &models.Poll{
		ID:            "p1",
		ChoiceRule:    rule,
		MaxSelections: maxSelections,
		Options: []models.Option{
			{ID: "opt-a", Label: "A", Position: 0},
			{ID: "opt-b", Label: "B", Position: 1},
			{ID: "opt-c", Label: "C", Position: 2},
		},
	}
}

// TestValidateSelections_SingleChoice tests the single-choice rule
func TestValidateSelections_SingleChoice(t *testing.T) {
	poll := testPoll(models.ChoiceSingle, 1)

	selections, err := services.ValidateSelections(poll, []string{"opt-a"})
	if err != nil {
		t.Fatalf("ValidateSelections failed: %v", err)
	}
	if len(selections) != 1 || selections[0] != "opt-a" {
		t.Errorf("expected [opt-a], got %v", selections)
	}
}

// TestValidateSelections_SingleChoiceRejectsMultiple tests that single-choice rejects two selections
func TestValidateSelections_SingleChoiceRejectsMultiple(t *testing.T) {
	poll := testPoll(models.ChoiceSingle, 1)

	_, err := services.ValidateSelections(poll, []string{"opt-a", "opt-b"})
	if err != services.ErrInvalidSelectionCount {
		t.Errorf("expected ErrInvalidSelectionCount, got %v", err)
	}
}

// TestValidateSelections_Empty tests that an empty selection set is rejected under both rules
func TestValidateSelections_Empty(t *testing.T) {
	single := testPoll(models.ChoiceSingle, 1)
	if _, err := services.ValidateSelections(single, nil); err != services.ErrInvalidSelectionCount {
		t.Errorf("single: expected ErrInvalidSelectionCount, got %v", err)
	}

	multiple := testPoll(models.ChoiceMultiple, 2)
	if _, err := services.ValidateSelections(multiple, []string{}); err != services.ErrInvalidSelectionCount {
		t.Errorf("multiple: expected ErrInvalidSelectionCount, got %v", err)
	}
}

// TestValidateSelections_MultipleWithinLimit tests multi-choice up to the limit
func TestValidateSelections_MultipleWithinLimit(t *testing.T) {
	poll := testPoll(models.ChoiceMultiple, 2)

	selections, err := services.ValidateSelections(poll, []string{"opt-a", "opt-c"})
	if err != nil {
		t.Fatalf("ValidateSelections failed: %v", err)
	}
	if len(selections) != 2 {
		t.Errorf("expected 2 selections, got %d", len(selections))
	}
}

// TestValidateSelections_MultipleOverLimit tests that more than max_selections is rejected
func TestValidateSelections_MultipleOverLimit(t *testing.T) {
	poll := testPoll(models.ChoiceMultiple, 2)

	_, err := services.ValidateSelections(poll, []string{"opt-a", "opt-b", "opt-c"})
	if err != services.ErrInvalidSelectionCount {
		t.Errorf("expected ErrInvalidSelectionCount, got %v", err)
	}
}

// TestValidateSelections_UnknownOption tests that a foreign option ID is rejected
func TestValidateSelections_UnknownOption(t *testing.T) {
	poll := testPoll(models.ChoiceSingle, 1)

	_, err := services.ValidateSelections(poll, []string{"opt-zzz"})
	if err != services.ErrUnknownOption {
		t.Errorf("expected ErrUnknownOption, got %v", err)
	}
}

// TestValidateSelections_DuplicatesCollapse tests that repeating an option counts once
func TestValidateSelections_DuplicatesCollapse(t *testing.T) {
	poll := testPoll(models.ChoiceSingle, 1)

	selections, err := services.ValidateSelections(poll, []string{"opt-a", "opt-a", "opt-a"})
	if err != nil {
		t.Fatalf("ValidateSelections failed: %v", err)
	}
	if len(selections) != 1 {
		t.Errorf("expected duplicates to collapse to 1, got %d", len(selections))
	}
}

// TestValidateSelections_DuplicatesCountOnceAgainstLimit tests dedup before the limit check
func TestValidateSelections_DuplicatesCountOnceAgainstLimit(t *testing.T) {
	poll := testPoll(models.ChoiceMultiple, 2)

	// Three raw entries but only two distinct options
	selections, err := services.ValidateSelections(poll, []string{"opt-a", "opt-b", "opt-a"})
	if err != nil {
		t.Fatalf("ValidateSelections failed: %v", err)
	}
	if len(selections) != 2 {
		t.Errorf("expected 2 distinct selections, got %d", len(selections))
	}
}
