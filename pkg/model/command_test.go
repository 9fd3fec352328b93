package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommand(t *testing.T) {
	cmd, err := DecodeCommand([]byte(`{"command":"Next"}`))
	require.NoError(t, err)
	assert.Equal(t, CommandNext, cmd.Command)

	cmd, err = DecodeCommand([]byte(`{"command":"GoTo","slide":3}`))
	require.NoError(t, err)
	assert.Equal(t, CommandGoTo, cmd.Command)
	require.NotNil(t, cmd.Slide)
	assert.Equal(t, 3, *cmd.Slide)

	cmd, err = DecodeCommand([]byte(`{"command":"Register","name":"viewer","renderer":"Html"}`))
	require.NoError(t, err)
	assert.Equal(t, CommandRegister, cmd.Command)
	assert.Equal(t, "viewer", cmd.Name)
	assert.Equal(t, RendererHTML, cmd.Renderer)
}

func TestDecodeCommandRejectsBadFrames(t *testing.T) {
	_, err := DecodeCommand([]byte(`not json`))
	assert.Error(t, err)

	_, err = DecodeCommand([]byte(`{"command":"Teleport"}`))
	assert.ErrorContains(t, err, "unknown command")

	_, err = DecodeCommand([]byte(`{}`))
	assert.Error(t, err)

	_, err = DecodeCommand([]byte(`{"command":"GoTo"}`))
	assert.ErrorContains(t, err, "slide index")
}

func TestGoToCommandRoundTrip(t *testing.T) {
	data, err := GoToCommand(7).Encode()
	require.NoError(t, err)

	cmd, err := DecodeCommand(data)
	require.NoError(t, err)
	assert.Equal(t, CommandGoTo, cmd.Command)
	require.NotNil(t, cmd.Slide)
	assert.Equal(t, 7, *cmd.Slide)
}
