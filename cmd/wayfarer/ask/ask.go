// Package askcmder provides the ask command for one-shot questions against
// a running Wayfarer server.
package askcmder

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wayfarerhq/wayfarer/api"
	"github.com/wayfarerhq/wayfarer/pkg/dotdir"
	"github.com/wayfarerhq/wayfarer/pkg/engine"
)

type AskCommander struct {
	target  string
	profile []string
}

const askLongDesc string = `Ask one question against a running Wayfarer server.

Progress updates stream to stderr and the final answer prints to stdout.
If the server asks for missing profile fields, supply them with --profile
and re-ask; provided fields are saved to .wayfarer/profile.json and reused
on later questions.

Examples:
  wayfarer ask "Can I work in Taiwan on a student visa?"
  wayfarer ask --profile nationality=Canada --profile visa_type=student "Can I work?"`

const askShortDesc string = "Ask a question against a running server"

func NewAskCmd() *cobra.Command {
	cmder := &AskCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(strings.Join(args, " "), configDir)
		},
	}

	cmd.Flags().StringVarP(&cmder.target, "target", "t", "http://localhost:8080", "Base URL of the running server")
	cmd.Flags().StringArrayVarP(&cmder.profile, "profile", "p", nil, "Profile field as key=value (repeatable)")

	return cmd
}

func (c *AskCommander) run(question, configDir string) error {
	ddm := dotdir.NewManager()

	profile, err := ddm.LoadProfile(configDir)
	if err != nil {
		return err
	}
	if profile == nil {
		profile = map[string]string{}
	}

	for _, pair := range c.profile {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return fmt.Errorf("invalid --profile value %q, expected key=value", pair)
		}
		profile[key] = value
	}

	if len(profile) > 0 {
		if err := ddm.SaveProfile(profile, configDir); err != nil {
			return err
		}
	}

	body, err := json.Marshal(api.ChatRequest{
		Message:     question,
		UserProfile: profile,
	})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	resp, err := http.Post(c.target+"/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("reaching server at %s: %w", c.target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp api.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("server rejected request: %s", errResp.Error)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return streamEvents(resp)
}

// streamEvents prints status lines to stderr as they arrive and the answer
// to stdout. Returns an error for an error event so the exit code reflects
// the run outcome.
func streamEvents(resp *http.Response) error {
	var answered bool

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var ev engine.Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return fmt.Errorf("reading event stream: %w", err)
		}

		switch ev.Type {
		case engine.EventStatus:
			fmt.Fprintf(os.Stderr, "· %s\n", ev.Content)
		case engine.EventAnswer:
			fmt.Println(ev.Content)
			answered = true
		case engine.EventError:
			return fmt.Errorf("run failed: %s", ev.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading event stream: %w", err)
	}

	if !answered {
		fmt.Fprintln(os.Stderr, "no answer produced; supply the requested profile fields with --profile and re-ask")
	}

	return nil
}
