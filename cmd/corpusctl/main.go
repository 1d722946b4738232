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

	"github.com/spf13/cobra"
)

var (
	version = "dev"

	serverURL string
	timeout   time.Duration

	profileRole      string
	profileInterests []string
	confirmReset     bool
	ingestReset      bool
	queryTopK        int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "corpusctl",
	Short:   "Operate the askdocs corpus service",
	Version: version,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Queue an ingestion pass over a corpus directory",
	Long: `Queue an ingestion pass over a corpus directory on the server.

The path must be visible to the server process. Re-running over an
unchanged corpus is a no-op: already-indexed segments are skipped.

Examples:
  corpusctl ingest /data/docs
  corpusctl ingest /data/docs --reset
  corpusctl --server http://askdocs:9020 ingest /data/docs`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Destroy the entire index",
	Long: `Queue a destructive reset of the document index.

Every indexed segment is removed. Requires --yes.`,
	RunE: runReset,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index status",
	RunE:  runStatus,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage user profiles",
}

var profileGetCmd = &cobra.Command{
	Use:   "get <user_id>",
	Short: "Show a user's profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileGet,
}

var profileSetCmd = &cobra.Command{
	Use:   "set <user_id>",
	Short: "Create or replace a user's profile",
	Long: `Create or replace a user's profile.

Examples:
  corpusctl profile set alice --role developer --interest AI --interest Security
  corpusctl profile set bob --role manager`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileSet,
}

var queryCmd = &cobra.Command{
	Use:   "query <user_id> <question>",
	Short: "Ask a personalized question",
	Args:  cobra.ExactArgs(2),
	RunE:  runQuery,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server",
		envOr("ASKDOCS_URL", "http://localhost:9020"), "askdocs server base URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 120*time.Second, "request timeout")

	ingestCmd.Flags().BoolVar(&ingestReset, "reset", false, "clear the index before ingesting")

	resetCmd.Flags().BoolVar(&confirmReset, "yes", false, "confirm the destructive reset")

	profileSetCmd.Flags().StringVar(&profileRole, "role", "", "user role (required)")
	profileSetCmd.Flags().StringArrayVar(&profileInterests, "interest", nil, "interest topic (repeatable)")
	_ = profileSetCmd.MarkFlagRequired("role")

	queryCmd.Flags().IntVar(&queryTopK, "top-k", 0, "number of context segments (server default if 0)")

	profileCmd.AddCommand(profileGetCmd)
	profileCmd.AddCommand(profileSetCmd)

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(queryCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func client() *http.Client {
	return &http.Client{Timeout: timeout}
}

func doRequest(method, path string, payload interface{}) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, strings.TrimRight(serverURL, "/")+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client().Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("call server: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func printJSON(data []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		fmt.Println(string(data))
		return
	}
	fmt.Println(buf.String())
}

func runIngest(cmd *cobra.Command, args []string) error {
	status, data, err := doRequest(http.MethodPost, "/internal/corpus/ingest",
		map[string]interface{}{"path": args[0], "reset": ingestReset})
	if err != nil {
		return err
	}
	if status != http.StatusAccepted {
		return fmt.Errorf("server returned %d: %s", status, string(data))
	}
	printJSON(data)
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	if !confirmReset {
		return fmt.Errorf("reset removes every indexed segment; re-run with --yes to confirm")
	}

	status, data, err := doRequest(http.MethodPost, "/internal/corpus/reset", nil)
	if err != nil {
		return err
	}
	if status != http.StatusAccepted {
		return fmt.Errorf("server returned %d: %s", status, string(data))
	}
	printJSON(data)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	status, data, err := doRequest(http.MethodGet, "/v1/status", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", status, string(data))
	}
	printJSON(data)
	return nil
}

func runProfileGet(cmd *cobra.Command, args []string) error {
	status, data, err := doRequest(http.MethodGet, "/v1/profiles/"+args[0], nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("no profile for user_id=%s", args[0])
	}
	if status != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", status, string(data))
	}
	printJSON(data)
	return nil
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	payload := map[string]interface{}{
		"role":      profileRole,
		"interests": profileInterests,
	}
	status, data, err := doRequest(http.MethodPut, "/v1/profiles/"+args[0], payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", status, string(data))
	}
	printJSON(data)
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	payload := map[string]interface{}{
		"user_id":  args[0],
		"question": args[1],
	}
	if queryTopK > 0 {
		payload["top_k"] = queryTopK
	}

	status, data, err := doRequest(http.MethodPost, "/v1/query", payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", status, string(data))
	}
	printJSON(data)
	return nil
}
