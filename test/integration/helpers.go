//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	APIEndpoint   string
	AdminUser     string
	AdminPassword string
	CsctlPath     string
	Verbose       bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		APIEndpoint:   os.Getenv("CSCTL_IT_API"),
		AdminUser:     os.Getenv("CSCTL_IT_USERNAME"),
		AdminPassword: os.Getenv("CSCTL_IT_PASSWORD"),
		CsctlPath:     getCsctlPath(),
		Verbose:       os.Getenv("CSCTL_IT_VERBOSE") == "true",
	}
}

func getCsctlPath() string {
	if path := os.Getenv("CSCTL_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../csctl", "./csctl", "../csctl"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "csctl"
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.APIEndpoint == "" || config.AdminUser == "" {
		t.Skip("CSCTL_IT_API or CSCTL_IT_USERNAME not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.CsctlPath); err != nil {
		t.Skipf("csctl binary not found at %s, skipping integration test", config.CsctlPath)
	}
}

// CommandRunner runs csctl against an isolated config file.
type CommandRunner struct {
	config     *TestConfig
	configFile string
	t          *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config:     config,
		configFile: filepath.Join(t.TempDir(), "config.yml"),
		t:          t,
	}
}

// Run executes a csctl command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a csctl command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	args = append([]string{"--config", runner.configFile}, args...)

	cmd := exec.Command(runner.config.CsctlPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.CsctlPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// Login authenticates the admin account and stores the token in the runner's config file.
func (runner *CommandRunner) Login() error {
	_, stderr, err := runner.Run("--api", runner.config.APIEndpoint, "login",
		"--username", runner.config.AdminUser,
		"--password", runner.config.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to log in: %s", stderr)
	}

	return nil
}

// RunJSON executes a command with JSON output and decodes it into out.
func (runner *CommandRunner) RunJSON(out interface{}, args ...string) {
	runner.t.Helper()

	stdout, stderr, err := runner.Run(append(args, "--output", "json")...)
	require.NoError(runner.t, err, stderr)
	require.NoError(runner.t, json.Unmarshal([]byte(stdout), out), stdout)
}

// GenerateTestCode creates a unique resource code
func GenerateTestCode(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// CleanupResource attempts to delete a test resource
func (runner *CommandRunner) CleanupResource(group string, id int) {
	stdout, stderr, err := runner.Run(group, "delete", fmt.Sprint(id))
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for %s %d: %s\nStderr: %s", group, id, stdout, stderr)
	}
}
