// replay reads an operation-list JSON document and either matches it
// locally, printing the resulting book and trades, or submits it to a
// running intake server.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/openexchange/matchbook/pkg/api"
	"github.com/openexchange/matchbook/pkg/engine"
)

func main() {
	file := flag.String("file", "", "path to orders JSON file")
	url := flag.String("url", "", "intake endpoint; empty means process locally")
	retries := flag.Uint64("retries", 5, "max retries when submitting to -url")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: replay -file orders.json [-url http://host:8080/api/v1/orders/process]")
		os.Exit(2)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		fatal(err)
	}

	var out []byte
	if *url == "" {
		out, err = processLocal(data)
	} else {
		out, err = submit(*url, data, *retries)
	}
	if err != nil {
		fatal(err)
	}

	fmt.Println(string(out))
}

func processLocal(data []byte) ([]byte, error) {
	var req api.ProcessRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse orders file: %w", err)
	}
	if req.Orders == nil {
		return nil, fmt.Errorf("orders field missing or not a list")
	}

	eng := engine.New()
	rejected := eng.ProcessAll(*req.Orders)
	return json.MarshalIndent(api.BuildResponse(eng, rejected), "", "  ")
}

// submit posts the document as-is, retrying transport failures with
// exponential backoff. Client errors are not retried.
func submit(url string, data []byte, retries uint64) ([]byte, error) {
	var body []byte

	operation := func() error {
		resp, err := http.Post(url, "application/json", bytes.NewReader(data))
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(fmt.Errorf("intake rejected request: %s: %s", resp.Status, body))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("intake returned %s", resp.Status)
		}
		return nil
	}

	boff := backoff.NewExponentialBackOff()
	boff.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, backoff.WithMaxRetries(boff, retries)); err != nil {
		return nil, err
	}
	return body, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "replay:", err)
	os.Exit(1)
}
