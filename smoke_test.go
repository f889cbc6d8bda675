package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decoder/internal/blocks"
	"decoder/internal/testutils"
)

func TestConvertCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader("## Resumo\n- ponto um\n- ponto dois\n---\nTexto final"))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"convert"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())

	var got []blocks.Block
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 5)
	assert.Equal(t, blocks.Heading2, got[0].Type)
	assert.Equal(t, blocks.BulletedItem, got[1].Type)
	assert.Equal(t, "ponto dois", got[2].Text())
	assert.Equal(t, blocks.Divider, got[3].Type)
	assert.Equal(t, blocks.Paragraph, got[4].Type)
}

func TestConvertCommand_MissingFile(t *testing.T) {
	rootCmd.SetArgs([]string{"convert", "does-not-exist.md"})
	defer rootCmd.SetArgs(nil)
	assert.Error(t, rootCmd.Execute())
}

func TestSmoke_Startup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping smoke test in short mode")
	}

	suite := testutils.NewIntegrationSuite(t)
	suite.Setup()
	defer suite.Teardown()

	cfg := suite.AppConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := run(ctx, cfg); err != nil {
			t.Logf("app run exited: %v", err)
		}
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://localhost:8081/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 500*time.Millisecond)
}
