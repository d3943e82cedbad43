package mcp

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/vamphost/internal/validation"
)

// ValidatePluginInfoInput validates PluginInfoInput fields.
func ValidatePluginInfoInput(in *PluginInfoInput) error {
	if err := validation.ValidatePluginKey(in.Key); err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	return nil
}

// ValidateRunInput validates RunInput fields.
func ValidateRunInput(in *RunInput) error {
	if err := validation.ValidatePluginKey(in.Key); err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	if err := validation.ValidatePath(in.AudioPath); err != nil {
		return fmt.Errorf("invalid audio_path: %w", err)
	}
	if in.Output != "" {
		if err := validation.ValidateIdentifier(in.Output); err != nil {
			return fmt.Errorf("invalid output: %w", err)
		}
	}
	if in.BlockSize < 0 || in.StepSize < 0 {
		return errors.New("block_size and step_size must not be negative")
	}
	if in.Limit < 0 {
		return errors.New("limit must not be negative")
	}
	return nil
}
