package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommandPlainJSON(t *testing.T) {
	cmd, err := DecodeCommand(`{"operation": "READ", "filters": {"department": "CSE"}}`)
	require.NoError(t, err)
	assert.Equal(t, OpRead, cmd.Operation)
	assert.Equal(t, "CSE", cmd.Filters["department"])
	assert.NotNil(t, cmd.Fields)
}

func TestDecodeCommandFencedReply(t *testing.T) {
	reply := "Here is the parsed operation:\n```json\n" +
		`{"operation": "update", "filters": {"location": "CSE Lab"}, "fields": {"cost": 45000}}` +
		"\n```\nLet me know if you need anything else."
	cmd, err := DecodeCommand(reply)
	require.NoError(t, err)
	assert.Equal(t, OpUpdate, cmd.Operation)
	f, ok := cmd.FieldFloat("cost")
	require.True(t, ok)
	assert.Equal(t, 45000.0, f)
}

func TestDecodeCommandBracesInsideStrings(t *testing.T) {
	cmd, err := DecodeCommand(`{"operation": "CREATE", "fields": {"description": "Router {rack}"}}`)
	require.NoError(t, err)
	assert.Equal(t, "Router {rack}", cmd.FieldString("description"))
}

func TestDecodeCommandRejectsUnknownOperation(t *testing.T) {
	_, err := DecodeCommand(`{"operation": "TRUNCATE"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported operation")
}

func TestDecodeCommandRejectsUnfilteredMutation(t *testing.T) {
	_, err := DecodeCommand(`{"operation": "DELETE", "filters": {}}`)
	require.Error(t, err)

	_, err = DecodeCommand(`{"operation": "UPDATE", "fields": {"cost": 1}, "filters": {}}`)
	require.Error(t, err)
}

func TestDecodeCommandRejectsEmptyUpdate(t *testing.T) {
	_, err := DecodeCommand(`{"operation": "UPDATE", "filters": {"department": "CSE"}}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fields")
}

func TestDecodeCommandNoJSON(t *testing.T) {
	_, err := DecodeCommand("I could not understand that instruction.")
	require.Error(t, err)
}

func TestFieldStringRendersNumbers(t *testing.T) {
	cmd := Command{Fields: map[string]interface{}{"sl_no": 12.0, "cost": 1500.5}}
	assert.Equal(t, "12", cmd.FieldString("sl_no"))
	assert.Equal(t, "1500.5", cmd.FieldString("cost"))
	assert.Equal(t, "", cmd.FieldString("missing"))
}

func TestFieldFloatAcceptsStringAmounts(t *testing.T) {
	cmd := Command{Fields: map[string]interface{}{"cost": "45000"}}
	f, ok := cmd.FieldFloat("cost")
	require.True(t, ok)
	assert.Equal(t, 45000.0, f)

	_, ok = cmd.FieldFloat("missing")
	assert.False(t, ok)
}
