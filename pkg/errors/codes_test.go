package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodeRegistry_Completeness(t *testing.T) {
	allCodes := []ErrorCode{
		CodeMalformedLine,
		CodeMalformedContinuation,
		CodeInvalidFlags,
		CodeInvalidJointCode,
		CodeMalformedSpeaker,
		CodeInternal,
		CodeCancelled,
		CodeNotFound,
		CodeProcessing,
	}

	for _, code := range allCodes {
		t.Run(string(code), func(t *testing.T) {
			info, ok := ErrorCodeRegistry[code]
			assert.True(t, ok, "ErrorCode %s should be in registry", code)
			assert.Equal(t, code, info.Code, "Registry entry should have matching code")
			assert.NotEmpty(t, info.Description, "Description should not be empty")
			assert.NotEmpty(t, info.SuggestedAction, "SuggestedAction should not be empty")
		})
	}
}

func TestGetSuggestedAction(t *testing.T) {
	for code := range ErrorCodeRegistry {
		action := GetSuggestedAction(code)
		assert.NotEmpty(t, action, "Code %s should have a suggested action", code)
		assert.True(t, len(action) > 15, "Action for %s should be meaningful (>15 chars): %s", code, action)
	}

	action := GetSuggestedAction("unknown_code")
	assert.Contains(t, action, "--debug", "Unknown codes should suggest debug output")
}

func TestGetDescription(t *testing.T) {
	for code := range ErrorCodeRegistry {
		assert.NotEmpty(t, GetDescription(code), "Code %s should have a description", code)
	}

	assert.Equal(t, "Unknown error", GetDescription("unknown_code"))
}

func TestErrorCodeRegistry_ActionsAreConcrete(t *testing.T) {
	for code, info := range ErrorCodeRegistry {
		assert.NotContains(t, info.SuggestedAction, "might", "Action for %s should be concrete, not vague", code)
		assert.NotContains(t, info.SuggestedAction, "maybe", "Action for %s should be concrete, not vague", code)
	}
}
