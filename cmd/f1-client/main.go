// Command f1-client walks through the authorization code flow against a
// running server and prints the season stream.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/Josh-Mantel/MCP-F1/internal/config"
)

type options struct {
	server       string
	clientID     string
	clientSecret string
	redirectURI  string
	code         string
	year         int
}

func main() {
	config.LoadDotEnv()

	client := config.GetClientConfig()
	opts := options{}
	flag.StringVar(&opts.server, "server", "http://localhost:8080", "server base URL")
	flag.StringVar(&opts.clientID, "client-id", client.ID, "OAuth client id")
	flag.StringVar(&opts.clientSecret, "client-secret", client.Secret, "OAuth client secret")
	flag.StringVar(&opts.redirectURI, "redirect-uri", client.RedirectURI, "registered redirect URI")
	flag.StringVar(&opts.code, "code", "", "authorization code, prompted for when empty")
	flag.IntVar(&opts.year, "year", 2024, "season to stream")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func oauthConfig(opts options) *oauth2.Config {
	base := strings.TrimRight(opts.server, "/")
	return &oauth2.Config{
		ClientID:     opts.clientID,
		ClientSecret: opts.clientSecret,
		RedirectURL:  opts.redirectURI,
		Scopes:       []string{config.ScopeF1Read},
		Endpoint: oauth2.Endpoint{
			AuthURL:   base + "/authorize",
			TokenURL:  base + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func run(ctx context.Context, opts options, in io.Reader, out io.Writer) error {
	conf := oauthConfig(opts)

	code := opts.code
	if code == "" {
		state := uuid.NewString()
		fmt.Fprintf(out, "Open this URL in a browser and approve access:\n\n  %s\n\n", conf.AuthCodeURL(state))
		fmt.Fprint(out, "Paste the authorization code: ")

		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read code: %w", err)
		}
		code = strings.TrimSpace(line)
		if code == "" {
			return errors.New("no authorization code given")
		}
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}

	return stream(ctx, conf.Client(ctx, token), opts, out)
}

// stream prints each server-sent event as "name: data"
func stream(ctx context.Context, client *http.Client, opts options, out io.Writer) error {
	endpoint := fmt.Sprintf("%s/f1/stream?year=%d", strings.TrimRight(opts.server, "/"), opts.year)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("stream returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var event string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			event = name
			continue
		}
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			fmt.Fprintf(out, "%s: %s\n", event, data)
		}
	}
	return scanner.Err()
}
