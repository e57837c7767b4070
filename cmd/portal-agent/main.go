// Command portal-agent logs into a portal and replays a scripted set of
// anti-cheat signals through the reporting agent.  Useful for demoing the
// live admin stream and for exercising the ingestion path end to end.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/cookiejar"
	"os"
	"time"

	"github.com/codearena/portal/agent"
)

func main() {
	var (
		server   = flag.String("server", "http://localhost:8080", "portal base URL")
		username = flag.String("username", "", "participant username")
		password = flag.String("password", "", "participant password")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "portal-agent ", log.LstdFlags)

	if *username == "" || *password == "" {
		logger.Fatal("both -username and -password are required")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		logger.Fatalf("cookie jar: %v", err)
	}
	client := &http.Client{Jar: jar, Timeout: 10 * time.Second}

	if err := login(client, *server, *username, *password); err != nil {
		logger.Fatalf("login: %v", err)
	}
	logger.Printf("logged in as %s", *username)

	r := agent.NewReporter(agent.Options{
		Endpoint: *server + "/violations",
		Client:   client,
		Logger:   logger,
	})

	// A plausible misbehaving-participant session.
	script := []struct {
		wait time.Duration
		sig  agent.Signal
	}{
		{0, agent.VisibilityHidden{}},
		{300 * time.Millisecond, agent.WindowBlur{}},
		{1 * time.Second, agent.ContextMenu{}},
		{200 * time.Millisecond, agent.ContextMenu{}}, // throttled away
		{1 * time.Second, agent.Clipboard{Op: agent.OpCopy, Length: 240}},
		{500 * time.Millisecond, agent.Clipboard{Op: agent.OpPaste, Length: 250}},
		{1 * time.Second, agent.KeyPress{Key: "PrintScreen"}},
		{500 * time.Millisecond, agent.KeyPress{Key: "c", Ctrl: true}},
	}

	for _, step := range script {
		time.Sleep(step.wait)
		r.Observe(step.sig)
		logger.Printf("observed %T (queued=%d)", step.sig, r.QueueLen())
	}

	if err := r.Close(); err != nil {
		logger.Printf("final flush: %v", err)
	}
	logger.Print("done")
}

func login(client *http.Client, server, username, password string) error {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})

	resp, err := client.Post(server+"/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
