package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"

	"golang.org/x/sync/errgroup"

	"github.com/andyballingall/kvikk-fix/internal/config"
)

// Peer drives a prettier executable installed alongside the project. Source
// is piped through stdin and the merged options are handed over as a
// temporary config file, so the peer never resolves configuration itself.
type Peer struct {
	Command string
	Args    []string
}

// NewPeer creates a Peer running command.
func NewPeer(command string) *Peer {
	return &Peer{Command: command}
}

func (p *Peer) Name() string {
	return "prettier"
}

func (p *Peer) Format(path, source string, opts config.Options) (string, error) {
	cfgFile, err := writeOptions(opts)
	if err != nil {
		return "", err
	}
	defer os.Remove(cfgFile)

	args := append([]string{}, p.Args...)
	args = append(args, "--config", cfgFile, "--no-editorconfig", "--stdin-filepath", path)

	//nolint:gosec // the command is the project's own prettier binary
	cmd := exec.Command(p.Command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", &PeerError{Command: p.Command, Wrapped: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", &PeerError{Command: p.Command, Wrapped: err}
	}
	if err = cmd.Start(); err != nil {
		return "", &PeerError{Command: p.Command, Wrapped: err}
	}

	var out bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		defer stdin.Close()
		_, wErr := io.WriteString(stdin, source)
		return wErr
	})
	g.Go(func() error {
		_, rErr := io.Copy(&out, stdout)
		return rErr
	})
	pumpErr := g.Wait()

	if err = cmd.Wait(); err != nil {
		return "", &PeerError{Command: p.Command, Stderr: stderr.String(), Wrapped: err}
	}
	if pumpErr != nil {
		return "", &PeerError{Command: p.Command, Stderr: stderr.String(), Wrapped: pumpErr}
	}
	return out.String(), nil
}

func (p *Peer) Check(path, source string, opts config.Options) (bool, error) {
	formatted, err := p.Format(path, source, opts)
	if err != nil {
		return false, err
	}
	return formatted == source, nil
}

func writeOptions(opts config.Options) (string, error) {
	data, err := json.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("failed to encode options for peer: %w", err)
	}
	f, err := os.CreateTemp("", "kvikk-fix-*.json")
	if err != nil {
		return "", fmt.Errorf("failed to create peer config file: %w", err)
	}
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write peer config file: %w", err)
	}
	if err = f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write peer config file: %w", err)
	}
	return f.Name(), nil
}
