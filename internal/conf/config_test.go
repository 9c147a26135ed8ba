package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  http:
    addr: 0.0.0.0:8000
    timeout: 10s
data:
  database:
    driver: mysql
    source: user:pass@tcp(127.0.0.1:3306)/medplanner?parseTime=True
  redis:
    addr: 127.0.0.1:6379
    db: 0
app:
  base_url: https://app.medplanner.test
  whatsapp:
    admin_phone: "5511999990000"
log:
  level: info
  format: text
  output: stdout
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAndValidate(t *testing.T) {
	bc, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	require.NoError(t, bc.Validate())

	assert.Equal(t, "0.0.0.0:8000", bc.Server.Http.Addr)
	assert.Equal(t, "mysql", bc.Data.Database.Driver)
	assert.Equal(t, "https://app.medplanner.test", bc.App.BaseURL)
	assert.Equal(t, "5511999990000", bc.App.WhatsApp.AdminPhone)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsIncompleteConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Bootstrap)
	}{
		{"missing server", func(b *Bootstrap) { b.Server = nil }},
		{"missing http addr", func(b *Bootstrap) { b.Server.Http.Addr = "" }},
		{"missing data", func(b *Bootstrap) { b.Data = nil }},
		{"missing database source", func(b *Bootstrap) { b.Data.Database.Source = "" }},
		{"missing app", func(b *Bootstrap) { b.App = nil }},
		{"missing base url", func(b *Bootstrap) { b.App.BaseURL = "" }},
		{"missing admin phone", func(b *Bootstrap) { b.App.WhatsApp.AdminPhone = "" }},
		{"missing log", func(b *Bootstrap) { b.Log = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bc, err := Load(writeConfig(t, sampleConfig))
			require.NoError(t, err)
			tt.mutate(bc)
			assert.Error(t, bc.Validate())
		})
	}
}
