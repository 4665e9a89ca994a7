package chatstream

import "fmt"

// Validate checks universal constraints on ChatArguments.
// Providers may apply additional backend-specific validation.
func (a ChatArguments) Validate() error {
	if a.Model == "" {
		return fmt.Errorf("model is required: %w", ErrValidation)
	}
	if len(a.Messages) == 0 {
		return fmt.Errorf("at least one message is required: %w", ErrValidation)
	}
	for i, m := range a.Messages {
		if err := ValidateMessage(m); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}
	if a.Temperature != nil && (*a.Temperature < 0 || *a.Temperature > 2) {
		return fmt.Errorf("temperature must be in [0, 2], got %g: %w", *a.Temperature, ErrValidation)
	}
	if a.TopP != nil && (*a.TopP < 0 || *a.TopP > 1) {
		return fmt.Errorf("top_p must be in [0, 1], got %g: %w", *a.TopP, ErrValidation)
	}
	if a.N != nil && *a.N < 1 {
		return fmt.Errorf("n must be positive, got %d: %w", *a.N, ErrValidation)
	}
	if a.MaxTokens != nil && *a.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d: %w", *a.MaxTokens, ErrValidation)
	}
	if err := validatePenalty("presence_penalty", a.PresencePenalty); err != nil {
		return err
	}
	if err := validatePenalty("frequency_penalty", a.FrequencyPenalty); err != nil {
		return err
	}
	if p := a.SearchParameters; p != nil {
		switch p.Mode {
		case SearchModeOn, SearchModeOff, SearchModeAuto:
		default:
			return fmt.Errorf("unknown search mode %q: %w", p.Mode, ErrValidation)
		}
	}
	return nil
}

// ValidateMessage checks that a message has a known role.
func ValidateMessage(m Message) error {
	switch m.Role {
	case RoleSystem, RoleUser, RoleAssistant:
		return nil
	default:
		return fmt.Errorf("unknown role %q: %w", m.Role, ErrValidation)
	}
}

func validatePenalty(name string, v *float64) error {
	if v != nil && (*v < -2 || *v > 2) {
		return fmt.Errorf("%s must be in [-2, 2], got %g: %w", name, *v, ErrValidation)
	}
	return nil
}
