package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func TestCategorizationResponseSchema_IsValidJSONSchema(t *testing.T) {
	_, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(CategorizationResponse()))
	require.NoError(t, err)
}

func TestValidateJSONString_Valid(t *testing.T) {
	err := ValidateJSONString(CategorizationResponse(), `{"code":"finance","confidence":0.92}`)
	assert.NoError(t, err)
}

func TestValidateJSONString_MissingField(t *testing.T) {
	err := ValidateJSONString(CategorizationResponse(), `{"code":"finance"}`)
	require.Error(t, err)

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestValidateJSONString_ConfidenceOutOfRange(t *testing.T) {
	err := ValidateJSONString(CategorizationResponse(), `{"code":"finance","confidence":1.5}`)
	assert.Error(t, err)
}

func TestValidateJSONString_RejectsExtraFields(t *testing.T) {
	err := ValidateJSONString(CategorizationResponse(), `{"code":"finance","confidence":0.5,"explanation":"because"}`)
	assert.Error(t, err)
}

func TestValidateJSONString_MalformedDocument(t *testing.T) {
	err := ValidateJSONString(CategorizationResponse(), `not json at all`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}
