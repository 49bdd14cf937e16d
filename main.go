package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

const banner = `
███████╗ ██████╗ ██████╗ ███╗   ███╗██████╗  ██████╗ ████████╗
██╔════╝██╔═══██╗██╔══██╗████╗ ████║██╔══██╗██╔═══██╗╚══██╔══╝
█████╗  ██║   ██║██████╔╝██╔████╔██║██████╔╝██║   ██║   ██║
██╔══╝  ██║   ██║██╔══██╗██║╚██╔╝██║██╔══██╗██║   ██║   ██║
██║     ╚██████╔╝██║  ██║██║ ╚═╝ ██║██████╔╝╚██████╔╝   ██║
╚═╝      ╚═════╝ ╚═╝  ╚═╝╚═╝     ╚═╝╚═════╝  ╚═════╝    ╚═╝

  Conversational Form Filling
  https://github.com/staxsum/formbot
`

var (
	targetURL  string
	configPath string
	timeout    int
	rateLimit  int
	verbose    bool
)

func init() {
	flag.StringVar(&targetURL, "url", "", "URL of the page holding the form (required unless set in config)")
	flag.StringVar(&configPath, "config", "", "Path to a YAML config file")
	flag.IntVar(&timeout, "timeout", 0, "Request timeout in seconds (overrides config)")
	flag.IntVar(&rateLimit, "rate", 0, "Requests per second limit (overrides config)")
	flag.BoolVar(&verbose, "verbose", false, "Verbose output")
}

func main() {
	printBanner()

	flag.Parse()

	cfg, err := LoadConfig(configPath)
	if err != nil {
		color.Red("[-] %v", err)
		os.Exit(1)
	}
	if targetURL != "" {
		cfg.URL = targetURL
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	if rateLimit > 0 {
		cfg.Rate = rateLimit
	}

	if cfg.URL == "" {
		color.Red("[-] Error: Target URL is required")
		fmt.Println("\nUsage:")
		flag.PrintDefaults()
		fmt.Println("\nExample:")
		fmt.Println("  ./formbot -url http://example.com/signup")
		os.Exit(1)
	}

	client, err := NewClient(time.Duration(cfg.Timeout)*time.Second, cfg.Rate, cfg.UserAgent)
	if err != nil {
		color.Red("[-] Failed to initialize HTTP client: %v", err)
		os.Exit(1)
	}

	registry := NewRegistry(NewExtractor(client), client)

	if err := runConversation(registry, cfg); err != nil {
		os.Exit(1)
	}
}

// runConversation drives one interactive session over stdin: one question
// per visible field, answers relayed to the registry, re-asking whenever an
// answer is rejected.
func runConversation(registry *Registry, cfg Config) error {
	ctx := context.Background()

	color.Cyan("[*] Fetching form from %s", cfg.URL)
	session, err := registry.Start(ctx, cfg.User, cfg.URL)
	if err != nil {
		color.Red("[-] %v", err)
		return err
	}

	if verbose {
		color.Cyan("[*] Session %s for %s", session.ID, session.User)
		color.White("%s", session.form.Description())
	}

	if session.NextPrompt() == nil {
		// nothing visible to ask, the form already went out
		color.Green("[+] %s", cfg.Messages.Complete)
		return nil
	}

	color.Green("[+] %s", cfg.Messages.Welcome)
	color.White("    (type %scancel to abandon the form)", cfg.Prefix)

	reader := bufio.NewScanner(os.Stdin)
	for {
		prompt := session.NextPrompt()
		if prompt == nil {
			return nil
		}

		color.Yellow("\n%s", prompt.Render())
		fmt.Print("> ")

		if !reader.Scan() {
			registry.Cancel(cfg.User)
			color.Red("\n[-] %s", cfg.Messages.Cancelled)
			return reader.Err()
		}

		text := strings.TrimSpace(reader.Text())
		if text == cfg.Prefix+"cancel" {
			registry.Cancel(cfg.User)
			color.Red("[-] %s", cfg.Messages.Cancelled)
			return nil
		}

		outcome, err := registry.Answer(ctx, cfg.User, text)
		var invalid *ValidationError
		switch {
		case errors.As(err, &invalid):
			color.Yellow("[!] "+cfg.Messages.Invalid, invalid)
			continue
		case err != nil:
			color.Red("[-] "+cfg.Messages.Failed, err)
			return err
		}

		if outcome.Submitted {
			color.Green("\n[+] %s", cfg.Messages.Complete)
			return nil
		}
	}
}

func printBanner() {
	color.Cyan(banner)
}
