// Command notify is a round hook that shows each result as a desktop
// notification. Install it by building into ~/.janken/hooks/notify next to
// its hook.json.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"

	"github.com/ayusman/janken/internal/game"
	"github.com/ayusman/janken/internal/hook"
)

func main() {
	var req hook.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	title, body := message(req)
	writeResponse(notify(title, body))
}

func message(req hook.Request) (title, body string) {
	switch req.Event {
	case hook.EventReveal:
		if req.Result == nil {
			return "Janken", "Round finished"
		}
		r := req.Result
		return game.OutcomeText(r.Outcome),
			fmt.Sprintf("%s vs %s. Score %d : %d", r.Player, r.Computer, r.Score.Player, r.Score.Computer)
	case hook.EventNewGame:
		return "Janken", "New game started"
	}
	return "Janken", req.Event
}

func writeResponse(err error) {
	resp := hook.Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func notify(title, body string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s", strconv.Quote(body), strconv.Quote(title))
		cmd = exec.Command("osascript", "-e", script)
	case "linux":
		cmd = exec.Command("notify-send", title, body)
	default:
		return fmt.Errorf("notifications not supported on %s", runtime.GOOS)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
