// Interactive setup: collects store and model credentials and writes .env.
// Secrets are read with terminal echo disabled so they never land in shell
// history or scrollback.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/train-anywhere/coach-gateway/internal/utils"
)

func runSetupCommand() {
	fmt.Println("coach-gateway setup")
	fmt.Println("Values are written to .env in the current directory.")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	storeURL := promptLine(reader, "Store URL (https://<project>.supabase.co)")
	anonKey := promptSecret("Store anon key")
	serviceKey := promptSecret("Store service key (blank to reuse anon key)")
	modelKey := promptSecret("Model provider API key")
	origins := promptLine(reader, "Allowed origins (comma-separated, blank for wildcard)")

	var b strings.Builder
	writeEnvLine(&b, "STORE_URL", storeURL)
	writeEnvLine(&b, "STORE_ANON_KEY", anonKey)
	writeEnvLine(&b, "STORE_SERVICE_KEY", serviceKey)
	writeEnvLine(&b, "GEMINI_API_KEY", modelKey)
	writeEnvLine(&b, "ALLOWED_ORIGINS", origins)

	if err := os.WriteFile(".env", []byte(b.String()), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error: writing .env: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("Wrote .env")
	if modelKey != "" {
		fmt.Printf("Model key: %s\n", utils.MaskKey(modelKey))
	}
}

func promptLine(reader *bufio.Reader, label string) string {
	fmt.Printf("%s: ", label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptSecret(label string) string {
	fmt.Printf("%s: ", label)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		// Piped input; fall back to a plain read.
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line)
	}
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(secret))
}

func writeEnvLine(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s=%s\n", key, value)
}
