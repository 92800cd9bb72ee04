package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"arbridge/internal/codec"
	"arbridge/pkg/types"
)

// callFlags are the flags of the call subcommand.
type callFlags struct {
	Server  string
	Args    string
	CBOR    bool
	Query   string
	Timeout time.Duration
}

// runCall posts one call to /v1/call/{method} and prints the response
// envelope as JSON. A failed or unknown call returns an error after printing.
func runCall(ctx context.Context, method string, f callFlags, out io.Writer) error {
	var args map[string]any
	if s := strings.TrimSpace(f.Args); s != "" {
		if !gjson.Valid(s) {
			return fmt.Errorf("--args is not valid JSON")
		}
		if err := json.Unmarshal([]byte(s), &args); err != nil {
			return fmt.Errorf("--args must be a JSON object: %w", err)
		}
	}
	c := codec.JSON
	if f.CBOR {
		c = codec.CBOR
	}
	var body []byte
	if args != nil {
		b, err := c.Marshal(args)
		if err != nil {
			return fmt.Errorf("encode args: %w", err)
		}
		body = b
	}

	endpoint := strings.TrimRight(f.Server, "/") + "/v1/call/" + url.PathEscape(method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", c.ContentType())
	req.Header.Set("Accept", c.ContentType())
	client := &http.Client{Timeout: f.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env types.CallResponse
	if err := codec.ForContentType(resp.Header.Get("Content-Type")).Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	js, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("render response: %w", err)
	}
	if err := printJSON(out, js, f.Query); err != nil {
		return err
	}
	switch {
	case env.NotImplemented:
		return fmt.Errorf("method %s is not implemented by the server", method)
	case env.Error != nil:
		return fmt.Errorf("%s: %s", env.Error.Code, env.Error.Message)
	}
	return nil
}

// printJSON writes js pretty-printed, or only the value at query (gjson
// path syntax) when query is set.
func printJSON(out io.Writer, js []byte, query string) error {
	if query == "" {
		_, err := out.Write(pretty.Pretty(js))
		return err
	}
	r := gjson.GetBytes(js, query)
	if !r.Exists() {
		return fmt.Errorf("query %q matched nothing", query)
	}
	v := r.Raw
	if r.Type == gjson.String {
		v = r.Str
	}
	_, err := fmt.Fprintln(out, v)
	return err
}
