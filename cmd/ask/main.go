// Command gully-ask sends one question to a running gully server and
// prints the formatted answer.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

func main() {
	server := pflag.String("server", "http://127.0.0.1:8000", "API server base URL")
	raw := pflag.Bool("raw", false, "also print the raw JSON response")
	pflag.Parse()

	if pflag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: gully-ask [--server URL] [--raw] \"your question\"")
		fmt.Fprintln(os.Stderr, "example: gully-ask \"summary of the 1st match between CSK and MI in 2011\"")
		os.Exit(2)
	}
	question := strings.Join(pflag.Args(), " ")

	url := strings.TrimRight(*server, "/") + "/ask"
	body, err := json.Marshal(map[string]string{"query": question})
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not encode request: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not reach API at %s: %v\n", url, err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read response: %v\n", err)
		os.Exit(1)
	}

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "API returned HTTP %d: %s\n", resp.StatusCode, truncate(string(payload), 2000))
		os.Exit(1)
	}

	var data struct {
		OK         bool            `json:"ok"`
		AnswerText string          `json:"answer_text"`
		Hint       string          `json:"hint"`
		Result     json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(payload, &data); err != nil {
		fmt.Fprintf(os.Stderr, "could not parse response: %v\n", err)
		os.Exit(1)
	}

	if *raw {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, payload, "", "  "); err == nil {
			fmt.Println(pretty.String())
		} else {
			fmt.Println(string(payload))
		}
	}

	if data.AnswerText != "" {
		fmt.Println(data.AnswerText)
		return
	}

	if !data.OK {
		if data.Hint != "" {
			fmt.Println(data.Hint)
		} else {
			fmt.Println("Sorry, I couldn't answer that.")
		}
		os.Exit(1)
	}

	fmt.Println("Query succeeded, but no formatted text was returned.")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
