package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// ----------------------------------------------------------------------------
// Config ---------------------------------------------------------------------
var (
	baseURL  = flag.String("url", env("API_BASE_URL", "http://localhost:8080"), "Server base URL")
	email    = flag.String("email", env("EMAIL", "demo@example.com"), "User e-mail")
	pass     = flag.String("pass", env("PASSWORD", "Password123"), "User password")
	nNotes   = flag.Int("n", envInt("COUNT", 50), "How many notes to create")
	nEvents  = flag.Int("events", envInt("EVENTS", 20), "How many calendar events to create")
	upgrade  = flag.String("product", env("PRODUCT", "pro_monthly"), "Product to buy before seeding, empty to stay on free")
	tagsPool = []string{"work", "home", "ideas", "travel", "health", "shopping"}
)

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return def
}

// ----------------------------------------------------------------------------
// HTTP helpers ---------------------------------------------------------------
func postJSON(path string, body any, token string) (*http.Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, *baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return http.DefaultClient.Do(req)
}

func must(body io.ReadCloser) []byte {
	defer body.Close()
	data, _ := io.ReadAll(body)
	return data
}

func expect(resp *http.Response, status int, what string) error {
	if resp.StatusCode != status {
		return fmt.Errorf("%s failed (%d): %s", what, resp.StatusCode, must(resp.Body))
	}
	_ = resp.Body.Close()
	return nil
}

// ----------------------------------------------------------------------------
// Main -----------------------------------------------------------------------
func main() {
	flag.Parse()
	gofakeit.Seed(time.Now().UnixNano())

	fmt.Printf("Init account %s (notes=%d, events=%d) on %s\n", *email, *nNotes, *nEvents, *baseURL)

	steps := []func(token string) error{
		buyProduct,
		func(token string) error { return createNotes(token, *nNotes) },
		func(token string) error { return createEvents(token, *nEvents) },
	}

	token, err := ensureUser()
	if err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}

	for _, step := range steps {
		if err := step(token); err != nil {
			fmt.Fprintln(os.Stderr, "FATAL:", err)
			os.Exit(1)
		}
	}

	fmt.Println("✔ done")
}

// ----------------------------------------------------------------------------
// Step 1 – make sure the user exists -----------------------------------------
func ensureUser() (string, error) {
	signUp := map[string]string{"email": *email, "password": *pass, "full_name": gofakeit.Name()}

	// Try sign-up first …
	if resp, err := postJSON("/api/v1/auth/sign-up", signUp, ""); err == nil && resp.StatusCode < 300 {
		var r struct {
			Token string `json:"token"`
		}
		_ = json.Unmarshal(must(resp.Body), &r)
		fmt.Println("• signed-up new user")
		return r.Token, nil
	}

	// … otherwise fall back to sign-in.
	resp, err := postJSON("/api/v1/auth/sign-in", map[string]string{"email": *email, "password": *pass}, "")
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sign-in failed (%d): %s", resp.StatusCode, must(resp.Body))
	}
	var r struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(must(resp.Body), &r)
	fmt.Println("• signed-in existing user")
	return r.Token, nil
}

// ----------------------------------------------------------------------------
// Step 2 – lift the free quota ------------------------------------------------
func buyProduct(token string) error {
	if *upgrade == "" {
		return nil
	}
	resp, err := postJSON("/api/v1/billing/purchase", map[string]string{"product_id": *upgrade}, token)
	if err != nil {
		return err
	}
	if err := expect(resp, http.StatusCreated, "purchase "+*upgrade); err != nil {
		return err
	}
	fmt.Println("• bought", *upgrade)
	return nil
}

// ----------------------------------------------------------------------------
// Step 3 – create notes -------------------------------------------------------
func createNotes(token string, total int) error {
	for i := 1; i <= total; i++ {
		todos := make([]map[string]any, gofakeit.Number(0, 4))
		for j := range todos {
			todos[j] = map[string]any{"text": gofakeit.Sentence(4), "completed": gofakeit.Bool()}
		}

		note := map[string]any{
			"title":   gofakeit.Sentence(3),
			"content": gofakeit.Paragraph(1, 3, 40, " "),
			"tags":    []string{gofakeit.RandomString(tagsPool), gofakeit.RandomString(tagsPool)},
			"todos":   todos,
		}

		resp, err := postJSON("/api/v1/notes", note, token)
		if err != nil {
			return err
		}
		if err := expect(resp, http.StatusCreated, fmt.Sprintf("create note %d", i)); err != nil {
			return err
		}

		if i%10 == 0 || i == total {
			fmt.Printf("  … notes %d/%d\n", i, total)
		}
	}
	return nil
}

// ----------------------------------------------------------------------------
// Step 4 – create events with reminders ----------------------------------------
func createEvents(token string, total int) error {
	now := time.Now()
	for i := 1; i <= total; i++ {
		start := gofakeit.DateRange(now.AddDate(0, -1, 0), now.AddDate(0, 2, 0)).Truncate(15 * time.Minute)
		event := map[string]any{
			"title":       gofakeit.Sentence(2),
			"description": gofakeit.Sentence(8),
			"start_time":  start.Format(time.RFC3339),
			"end_time":    start.Add(time.Duration(gofakeit.Number(1, 8)) * 15 * time.Minute).Format(time.RFC3339),
			"color":       gofakeit.HexColor(),
		}

		resp, err := postJSON("/api/v1/calendar/events", event, token)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusCreated {
			return fmt.Errorf("create event %d failed (%d): %s", i, resp.StatusCode, must(resp.Body))
		}
		var created struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(must(resp.Body), &created)

		at := start.Add(-30 * time.Minute)
		reminder := map[string]any{
			"type":     "time",
			"title":    "Upcoming: " + event["title"].(string),
			"time":     at.Format(time.RFC3339),
			"event_id": created.ID,
		}
		resp, err = postJSON("/api/v1/calendar/reminders", reminder, token)
		if err != nil {
			return err
		}
		if err := expect(resp, http.StatusCreated, fmt.Sprintf("create reminder %d", i)); err != nil {
			return err
		}

		if i%10 == 0 || i == total {
			fmt.Printf("  … events %d/%d\n", i, total)
		}
	}
	return nil
}
