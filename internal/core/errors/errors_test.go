package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "config not found")
		if err.Error() != "[NOT_FOUND] config not found" {
			t.Errorf("expected [NOT_FOUND] config not found, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("unexpected EOF")
		err := Wrap(original, CodeConfig, "invalid architecture document")
		expected := "[CONFIG_ERROR] invalid architecture document: unexpected EOF"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("ContextIsSorted", func(t *testing.T) {
		err := New(CodeConfig, "bad layer")
		err = AddContext(err, CtxPath, "layerguard.toml")
		err = AddContext(err, CtxLayer, "ui")
		expected := "[CONFIG_ERROR] bad layer (layer=ui, path=layerguard.toml)"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := Newf(CodeValidationError, "invalid %s", "input")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("IsCodeThroughFmtWrap", func(t *testing.T) {
		err := fmt.Errorf("load: %w", New(CodeConfig, "layers must be an object"))
		if !IsCode(err, CodeConfig) {
			t.Error("expected IsCode to see through fmt.Errorf wrapping")
		}
	})

	t.Run("AddContextPromotesPlainErrors", func(t *testing.T) {
		err := AddContext(errors.New("boom"), CtxOperation, "walk")
		if !IsCode(err, CodeInternal) {
			t.Error("expected plain error to be promoted to CodeInternal")
		}
	})
}
