package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/howeyc/gopass"
	"golang.org/x/term"

	"github.com/ckvault/ckvault/internal/config"
	"github.com/ckvault/ckvault/internal/keychain"
	"github.com/ckvault/ckvault/internal/vaultcodec"
	"github.com/ckvault/ckvault/internal/vaultservice"
)

var vaultHomeFlag string

// resolveHome returns the vault home directory: --home flag, else
// config.Resolve()'s CKVAULT_HOME/$HOME/.ckvault default.
func resolveHome() (string, error) {
	if vaultHomeFlag != "" {
		return vaultHomeFlag, nil
	}
	return config.Resolve()
}

// loadConfig resolves the vault home and loads its config.json.
func loadConfig() (string, config.Config, error) {
	home, err := resolveHome()
	if err != nil {
		return "", config.Config{}, fmt.Errorf("failed to resolve vault home: %w", err)
	}
	cfg, err := config.Load(home)
	if err != nil {
		return "", config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return home, cfg, nil
}

// readPassword reads a password from stdin with asterisk masking when
// attached to a terminal, or a plain line otherwise (scripts/tests).
func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}
	pw, err := gopass.GetPasswdMasked()
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// readPasswordConfirm prompts twice and requires the two entries match.
func readPasswordConfirm(prompt string) ([]byte, error) {
	first, err := readPassword(prompt)
	if err != nil {
		return nil, err
	}
	second, err := readPassword("Confirm: ")
	if err != nil {
		return nil, err
	}
	if string(first) != string(second) {
		return nil, fmt.Errorf("passwords do not match")
	}
	return first, nil
}

// readLine reads a single trimmed line of plain (non-secret) input.
func readLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptYesNo asks a yes/no question, defaulting to defaultYes on a bare
// Enter.
func promptYesNo(prompt string, defaultYes bool) (bool, error) {
	suffix := " (y/N): "
	if defaultYes {
		suffix = " (Y/n): "
	}
	line, err := readLine(prompt + suffix)
	if err != nil {
		return false, err
	}
	line = strings.ToLower(line)
	switch line {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return defaultYes, nil
	}
}

// unlockSession opens the vault at vaultPath, trying the OS keychain
// first and falling back to an interactive master-password prompt.
func unlockSession(vaultPath string, kc *keychain.KeychainService) (*vaultservice.Session, error) {
	if kc != nil && kc.IsAvailable() {
		if pw, err := kc.Retrieve(); err == nil {
			sess, err := vaultservice.Unlock(vaultPath, []byte(pw))
			if err == nil {
				logVerbose("unlocked vault using keychain-cached password")
				return sess, nil
			}
		}
	}

	pw, err := readPassword("Master password: ")
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(os.Stderr)
	sess, err := vaultservice.Unlock(vaultPath, pw)
	if err != nil {
		if errors.Is(err, vaultcodec.ErrVaultNotFound) {
			return nil, fmt.Errorf("no vault found at %s; run %q to create one", vaultPath, "ckvault init")
		}
		return nil, fmt.Errorf("failed to unlock vault: %w", err)
	}
	return sess, nil
}
