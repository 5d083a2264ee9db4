package commands

import (
	"bytes"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/K0NGR3SS/triagekit/internal/config"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func md5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

func TestRunIOCCheck(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	dir := t.TempDir()
	payload := []byte("MZ\x90\x00 not really a dropper")
	target := writeTemp(t, dir, "dropper.exe", payload)
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	t.Run("sha256 match", func(t *testing.T) {
		iocs := writeTemp(t, dir, "hit.txt", []byte("# feed 2026-10\n\n"+sha256Hex(payload)+"\nevil.example.com\n"))

		var out bytes.Buffer
		require.NoError(t, runIOCCheck(&out, iocs, target, now))
		assert.Contains(t, out.String(), "MD5: "+md5Hex(payload))
		assert.Contains(t, out.String(), "SHA256: "+sha256Hex(payload))
		assert.Contains(t, out.String(), "[MATCH] SHA256 hash is in IOC list")
		assert.NotContains(t, out.String(), "[MATCH] MD5")
	})

	t.Run("md5 match uppercase list", func(t *testing.T) {
		iocs := writeTemp(t, dir, "md5.txt", []byte(bytes.ToUpper([]byte(md5Hex(payload)))))

		var out bytes.Buffer
		require.NoError(t, runIOCCheck(&out, iocs, target, now))
		assert.Contains(t, out.String(), "[MATCH] MD5 hash is in IOC list")
	})

	t.Run("no match", func(t *testing.T) {
		iocs := writeTemp(t, dir, "miss.txt", []byte("00000000000000000000000000000000\n"))

		var out bytes.Buffer
		require.NoError(t, runIOCCheck(&out, iocs, target, now))
		assert.Contains(t, out.String(), "[OK] No hash match found in IOC list (offline).")
	})

	t.Run("missing hash file", func(t *testing.T) {
		var out bytes.Buffer
		err := runIOCCheck(&out, filepath.Join(dir, "hit.txt"), filepath.Join(dir, "absent.bin"), now)
		assert.EqualError(t, err, "file not found: "+filepath.Join(dir, "absent.bin"))
		assert.Empty(t, out.String())
	})

	t.Run("missing ioc file", func(t *testing.T) {
		var out bytes.Buffer
		err := runIOCCheck(&out, filepath.Join(dir, "nope.txt"), target, now)
		assert.ErrorContains(t, err, "failed to load IOC list")
	})
}

func TestIOCCommand_RequiresFlags(t *testing.T) {
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"ioc", "--no-banner", "--ioc-file", "x.txt"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	assert.ErrorContains(t, err, `required flag(s) "hash-file" not set`)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "triagekit "+Version+"\n", out.String())
}

func TestApplyCollectFlags(t *testing.T) {
	require.NoError(t, collectCmd.ParseFlags([]string{"--max-processes", "3", "--compress", "--command-timeout", "2s"}))

	c := config.Default()
	c.OutputDir = "from-config"
	require.NoError(t, applyCollectFlags(collectCmd, c))

	assert.Equal(t, 3, c.Limits.Processes)
	assert.Equal(t, 200, c.Limits.Connections)
	assert.True(t, c.Compress)
	assert.Equal(t, 2*time.Second, c.CommandTimeout)
	assert.Equal(t, "reports", c.OutputDir, "without --config the flag default applies")
}
